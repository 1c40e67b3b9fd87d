package translator

import (
	"context"
	"fmt"
	"sync"

	gst "github.com/richinsley/goshadertranslator"
	shader "github.com/richinsley/gltriangle/shader"
)

var (
	translator     *gst.ShaderTranslator
	translatorErr  error
	translatorOnce sync.Once
)

// GetTranslator returns the process-wide shader translator, creating it on
// first use.
func GetTranslator(ctx context.Context) (*gst.ShaderTranslator, error) {
	translatorOnce.Do(func() {
		translator, translatorErr = gst.NewShaderTranslator(ctx)
	})
	if translatorErr != nil {
		return nil, fmt.Errorf("failed to create shader translator: %w", translatorErr)
	}
	return translator, nil
}

// Translate converts WebGL2 sources into GLSL 4.10 for desktop core
// contexts, or ESSL for GLES contexts.
func Translate(ctx context.Context, src shader.Sources, isGLES bool) (shader.Sources, error) {
	t, err := GetTranslator(ctx)
	if err != nil {
		return shader.Sources{}, err
	}

	outputFormat := gst.OutputFormatGLSL410
	if isGLES {
		outputFormat = gst.OutputFormatESSL
	}

	vs, err := t.TranslateShader(src.Vertex, "vertex", gst.ShaderSpecWebGL2, outputFormat)
	if err != nil {
		return shader.Sources{}, fmt.Errorf("vertex shader translation failed: %w", err)
	}
	fs, err := t.TranslateShader(src.Fragment, "fragment", gst.ShaderSpecWebGL2, outputFormat)
	if err != nil {
		return shader.Sources{}, fmt.Errorf("fragment shader translation failed: %w", err)
	}

	return shader.Sources{Vertex: vs.Code, Fragment: fs.Code}, nil
}

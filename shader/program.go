package shader

import (
	"fmt"
	"log/slog"

	graphics "github.com/richinsley/gltriangle/graphics"
)

// CompileError reports a shader stage that failed to compile.
type CompileError struct {
	Stage graphics.ShaderStage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader: %s", e.Stage, e.Log)
}

// LinkError reports a program that failed to link.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link program: %s", e.Log)
}

// Program is a linked vertex + fragment program owned by a device.
type Program struct {
	ID     uint32
	device graphics.Device
}

// Use binds the program for subsequent draws.
func (p *Program) Use() {
	p.device.UseProgram(p.ID)
}

// Release deletes the program. It is safe to call more than once.
func (p *Program) Release() {
	if p == nil || p.ID == 0 {
		return
	}
	p.device.DeleteProgram(p.ID)
	p.ID = 0
}

// Build compiles both stages and links them. Any compile or link failure is
// logged and returned; no partially built objects are left on the device.
// The stage objects are always released once linking has been attempted.
func Build(dev graphics.Device, src Sources, logger *slog.Logger) (*Program, error) {
	if logger == nil {
		logger = slog.Default()
	}

	vertexShader, err := compileShader(dev, graphics.VertexStage, src.Vertex, logger)
	if err != nil {
		return nil, err
	}
	fragmentShader, err := compileShader(dev, graphics.FragmentStage, src.Fragment, logger)
	if err != nil {
		dev.DeleteShader(vertexShader)
		return nil, err
	}

	program := dev.CreateProgram()
	dev.AttachShader(program, vertexShader)
	dev.AttachShader(program, fragmentShader)
	dev.LinkProgram(program)
	dev.DeleteShader(vertexShader)
	dev.DeleteShader(fragmentShader)

	if !dev.ProgramLinked(program) {
		lerr := &LinkError{Log: dev.ProgramInfoLog(program)}
		logger.Error("program link failed", "log", lerr.Log)
		dev.DeleteProgram(program)
		return nil, lerr
	}

	return &Program{ID: program, device: dev}, nil
}

func compileShader(dev graphics.Device, stage graphics.ShaderStage, source string, logger *slog.Logger) (uint32, error) {
	shader := dev.CreateShader(stage)
	dev.ShaderSource(shader, source)
	dev.CompileShader(shader)

	if !dev.ShaderCompiled(shader) {
		cerr := &CompileError{Stage: stage, Log: dev.ShaderInfoLog(shader)}
		logger.Error("shader compile failed", "stage", stage.String(), "log", cerr.Log)
		dev.DeleteShader(shader)
		return 0, cerr
	}
	return shader, nil
}

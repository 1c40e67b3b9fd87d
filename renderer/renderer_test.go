package renderer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	graphics "github.com/richinsley/gltriangle/graphics"
	"github.com/richinsley/gltriangle/graphics/graphicstest"
	shader "github.com/richinsley/gltriangle/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{Window: graphics.WindowConfig{Width: 1024, Height: 1024, Title: "test", Visible: true}}
}

func newTestRenderer(t *testing.T) (*Renderer, *graphicstest.Platform, *graphicstest.Context, *graphicstest.Device) {
	t.Helper()
	p, c, d := graphicstest.NewPlatform(1024, 1024)
	r, err := New(p, d, testConfig(), nil)
	require.NoError(t, err)
	return r, p, c, d
}

func TestInitSequence(t *testing.T) {
	r, p, c, d := newTestRenderer(t)
	defer r.Shutdown()

	require.Len(t, p.Configs, 1)
	assert.Equal(t, testConfig().Window, p.Configs[0])
	assert.True(t, c.Current)
	assert.Equal(t, 1, c.Interval)
	assert.Equal(t, [4]float32{0.2, 0.3, 0.3, 1.0}, d.ClearColorValue)
	assert.Equal(t, StateRunning, r.State())

	rec := p.Rec
	order := []string{"Init", "NewContext", "MakeCurrent", "SetSwapInterval 1", "DeviceInit", "ClearColor", "LinkProgram"}
	last := -1
	for _, call := range order {
		i := rec.Index(call)
		require.NotEqual(t, -1, i, call)
		assert.Greater(t, i, last, "%s out of order", call)
		last = i
	}
}

func TestGeometryUpload(t *testing.T) {
	r, _, _, d := newTestRenderer(t)
	defer r.Shutdown()

	assert.Equal(t, 36, SizeBytes(triangleVertices))
	assert.Equal(t, int32(12), Stride())

	require.Len(t, d.BufferBytes, 1)
	for vbo, size := range d.BufferBytes {
		assert.Equal(t, 36, size)
		assert.Equal(t, []float32{-0.5, -0.5, 0, 0.5, -0.5, 0, 0, 0.5, 0}, d.BufferData[vbo])
	}

	attr, ok := d.Attribs[0]
	require.True(t, ok)
	assert.Equal(t, graphicstest.Attrib{Components: 3, Stride: 12, Offset: 0, Enabled: true}, attr)
	assert.Len(t, d.Attribs, 1)
}

func TestGeometryUploadedOnce(t *testing.T) {
	r, p, c, _ := newTestRenderer(t)
	c.CloseAfter = 5
	r.Run(context.Background())
	r.Shutdown()

	assert.Equal(t, 1, p.Rec.Count("UploadStatic"))
}

func TestRunFrameSteps(t *testing.T) {
	r, p, c, _ := newTestRenderer(t)
	c.CloseAfter = 1
	r.Run(context.Background())
	program := r.program.ID
	r.Shutdown()

	rec := p.Rec
	start := rec.Index("Viewport 0 0 1024 1024")
	require.NotEqual(t, -1, start)
	want := []string{
		"Viewport 0 0 1024 1024",
		"Clear",
		fmt.Sprintf("UseProgram %d", program),
		"BindVertexArray 1",
		"DrawTriangles 0 3",
		"SwapBuffers",
		"PollEvents",
	}
	assert.Equal(t, want, rec.Calls[start:start+len(want)])
}

func TestEscapeStopsLoopAfterCurrentFrame(t *testing.T) {
	r, _, c, d := newTestRenderer(t)
	c.At(3, c.PressEscape)
	r.Run(context.Background())

	assert.Equal(t, 3, c.Frames)
	assert.Equal(t, int64(3), r.Frames())
	assert.Equal(t, 3, d.Draws)
	assert.Equal(t, StateClosing, r.State())
	r.Shutdown()
}

func TestAlreadyClosedRendersNothing(t *testing.T) {
	r, _, c, d := newTestRenderer(t)
	c.Closed = true
	r.Run(context.Background())

	assert.Zero(t, c.Frames)
	assert.Zero(t, d.Draws)
	r.Shutdown()
}

func TestResizeUpdatesViewportBeforeNextPresent(t *testing.T) {
	sizes := [][2]int{{800, 600}, {1, 1}, {3840, 2160}}
	for _, size := range sizes {
		r, p, c, d := newTestRenderer(t)
		c.At(1, func() { c.Resize(size[0], size[1]) })
		c.CloseAfter = 2
		r.Run(context.Background())
		r.Shutdown()

		want := [4]int32{0, 0, int32(size[0]), int32(size[1])}
		rec := p.Rec
		resized := rec.Index(fmt.Sprintf("Resize %d %d", size[0], size[1]))
		require.NotEqual(t, -1, resized)

		// The resize handler sets the viewport inside the poll, and the next
		// frame sets it again before presenting.
		next := rec.Calls[resized+1]
		assert.Equal(t, fmt.Sprintf("Viewport 0 0 %d %d", size[0], size[1]), next)
		swap := rec.LastIndex("SwapBuffers")
		assert.Greater(t, swap, resized)
		assert.Equal(t, want, d.Viewports[len(d.Viewports)-1])
	}
}

func TestSwapIntervalOnePerPresent(t *testing.T) {
	r, p, c, _ := newTestRenderer(t)
	c.CloseAfter = 10
	r.Run(context.Background())
	r.Shutdown()

	assert.Less(t, p.Rec.Index("SetSwapInterval 1"), p.Rec.Index("SwapBuffers"))
	assert.Len(t, c.SwapIntervals, 10)
	for _, interval := range c.SwapIntervals {
		assert.Equal(t, 1, interval)
	}
	assert.Equal(t, 10, p.Rec.Count("SwapBuffers"))
	assert.Equal(t, 10, p.Rec.Count("DrawTriangles"))
}

func TestContextCancelSetsCloseFlag(t *testing.T) {
	r, p, c, _ := newTestRenderer(t)
	ctx, cancel := context.WithCancel(context.Background())
	c.At(2, cancel)
	r.Run(ctx)
	r.Shutdown()

	assert.Equal(t, 2, c.Frames)
	assert.True(t, c.Closed)
	assert.Equal(t, 1, p.Rec.Count("SetShouldClose true"))
}

func TestShutdownOrderAndOnce(t *testing.T) {
	r, p, c, d := newTestRenderer(t)
	c.CloseAfter = 1
	r.Run(context.Background())
	r.Shutdown()
	r.Shutdown()

	assert.Equal(t, 1, c.Shutdowns)
	assert.Equal(t, 1, p.Terminates)
	assert.Zero(t, d.LivePrograms())
	assert.Empty(t, d.BufferBytes)

	rec := p.Rec
	shutdown := rec.Index("Shutdown")
	assert.Less(t, rec.Count("DeleteProgram"), 2)
	assert.Less(t, lastWithPrefix(rec, "DeleteProgram"), shutdown)
	assert.Less(t, lastWithPrefix(rec, "DeleteBuffer"), shutdown)
	assert.Less(t, lastWithPrefix(rec, "DeleteVertexArray"), shutdown)
	assert.Less(t, shutdown, rec.Index("Terminate"))
}

func lastWithPrefix(rec *graphicstest.Recorder, prefix string) int {
	for i := len(rec.Calls) - 1; i >= 0; i-- {
		if strings.HasPrefix(rec.Calls[i], prefix) {
			return i
		}
	}
	return -1
}

func TestInitFailures(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(p *graphicstest.Platform, d *graphicstest.Device)
		shutdowns int
		err       string
	}{
		{
			name:  "subsystem init",
			setup: func(p *graphicstest.Platform, _ *graphicstest.Device) { p.InitErr = errors.New("no display") },
			err:   "failed to initialize graphics",
		},
		{
			name:  "window creation",
			setup: func(p *graphicstest.Platform, _ *graphicstest.Device) { p.ContextErr = errors.New("version unavailable") },
			err:   "failed to create graphics context",
		},
		{
			name:      "device init",
			setup:     func(_ *graphicstest.Platform, d *graphicstest.Device) { d.InitErr = errors.New("no entry points") },
			shutdowns: 1,
			err:       "no entry points",
		},
		{
			name:      "link",
			setup:     func(_ *graphicstest.Platform, d *graphicstest.Device) { d.LinkLog = "link error" },
			shutdowns: 1,
			err:       "failed to link program",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, c, d := graphicstest.NewPlatform(1024, 1024)
			tt.setup(p, d)

			r, err := New(p, d, testConfig(), nil)
			assert.Nil(t, r)
			assert.ErrorContains(t, err, tt.err)
			assert.Equal(t, 1, p.Terminates, "subsystem terminated exactly once")
			assert.Equal(t, tt.shutdowns, c.Shutdowns)
			assert.Zero(t, d.LivePrograms())
			assert.Zero(t, d.LiveShaders())
			assert.Empty(t, d.BufferBytes)
		})
	}
}

func TestInvalidShaderAbortsBeforeLoop(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	p, c, d := graphicstest.NewPlatform(1024, 1024)
	cfg := testConfig()
	cfg.Sources = func(bool) (shader.Sources, error) {
		src := shader.Triangle(false)
		src.Fragment = "#version 410 core\nout vec4 FragColor;\nvoid mian() { FragColor = vec4(1.0); }\n"
		return src, nil
	}

	r, err := New(p, d, cfg, logger)
	require.Error(t, err)
	assert.Nil(t, r)

	var cerr *shader.CompileError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, graphics.FragmentStage, cerr.Stage)
	assert.Contains(t, logs.String(), "shader compile failed")

	assert.Zero(t, c.Frames, "render loop never entered")
	assert.Equal(t, 1, c.Shutdowns)
	assert.Equal(t, 1, p.Terminates)
	assert.Zero(t, d.LiveShaders())
	assert.Zero(t, d.LivePrograms())
	assert.Equal(t, -1, p.Rec.Index("SwapBuffers"))
}

func TestSourcesFollowContextKind(t *testing.T) {
	for _, gles := range []bool{false, true} {
		p, c, d := graphicstest.NewPlatform(64, 64)
		c.GLES = gles

		var asked []bool
		cfg := testConfig()
		cfg.Sources = func(isGLES bool) (shader.Sources, error) {
			asked = append(asked, isGLES)
			return shader.Triangle(isGLES), nil
		}
		r, err := New(p, d, cfg, nil)
		require.NoError(t, err)
		r.Shutdown()

		assert.Equal(t, []bool{gles}, asked)
		for _, s := range d.Shaders {
			assert.Equal(t, gles, strings.HasPrefix(s.Source, "#version 300 es"))
		}
	}
}

func TestSourcesError(t *testing.T) {
	p, c, d := graphicstest.NewPlatform(64, 64)
	cfg := testConfig()
	cfg.Sources = func(bool) (shader.Sources, error) { return shader.Sources{}, errors.New("translator unavailable") }

	_, err := New(p, d, cfg, nil)
	assert.ErrorContains(t, err, "failed to prepare shader sources")
	assert.Equal(t, 1, c.Shutdowns)
	assert.Equal(t, 1, p.Terminates)
}

func TestCustomClearColor(t *testing.T) {
	p, _, d := graphicstest.NewPlatform(64, 64)
	cfg := testConfig()
	cfg.ClearColor = &mgl32.Vec4{0, 0, 0, 1}
	r, err := New(p, d, cfg, nil)
	require.NoError(t, err)
	defer r.Shutdown()

	assert.Equal(t, [4]float32{0, 0, 0, 1}, d.ClearColorValue)
}

package glfwcontext

import (
	"errors"
	"testing"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	graphics "github.com/richinsley/gltriangle/graphics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindow struct {
	current     bool
	shouldClose bool
	width       int
	height      int
	swaps       int
	destroyed   int
}

func (w *fakeWindow) MakeContextCurrent()            { w.current = true }
func (w *fakeWindow) ShouldClose() bool              { return w.shouldClose }
func (w *fakeWindow) SetShouldClose(value bool)      { w.shouldClose = value }
func (w *fakeWindow) GetFramebufferSize() (int, int) { return w.width, w.height }
func (w *fakeWindow) SwapBuffers()                   { w.swaps++ }
func (w *fakeWindow) Destroy()                       { w.destroyed++ }

func TestEscapeSetsCloseFlag(t *testing.T) {
	tests := []struct {
		name   string
		key    glfw.Key
		action glfw.Action
		closed bool
	}{
		{name: "escape press", key: glfw.KeyEscape, action: glfw.Press, closed: true},
		{name: "escape release", key: glfw.KeyEscape, action: glfw.Release},
		{name: "escape repeat", key: glfw.KeyEscape, action: glfw.Repeat},
		{name: "other key press", key: glfw.KeyQ, action: glfw.Press},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &fakeWindow{}
			c := newContext(w)
			c.onKey(nil, tt.key, 0, tt.action, 0)
			assert.Equal(t, tt.closed, c.ShouldClose())
			assert.Zero(t, w.destroyed)
		})
	}
}

func TestEscapeDuringPollIsVisibleAfterEndFrame(t *testing.T) {
	w := &fakeWindow{}
	c := newContext(w)
	c.pollEvents = func() {
		c.onKey(nil, glfw.KeyEscape, 0, glfw.Press, 0)
	}

	require.False(t, c.ShouldClose())
	c.EndFrame()
	assert.Equal(t, 1, w.swaps)
	assert.True(t, c.ShouldClose())
}

func TestFramebufferResizeForwardsSize(t *testing.T) {
	c := newContext(&fakeWindow{})
	var got [][2]int
	c.SetResizeCallback(func(width, height int) {
		got = append(got, [2]int{width, height})
	})

	c.onFramebufferSize(nil, 800, 600)
	c.onFramebufferSize(nil, 0, 0)
	c.onFramebufferSize(nil, 1, 2048)

	assert.Equal(t, [][2]int{{800, 600}, {1, 2048}}, got)
}

func TestFramebufferResizeWithoutCallback(t *testing.T) {
	c := newContext(&fakeWindow{})
	assert.NotPanics(t, func() { c.onFramebufferSize(nil, 640, 480) })
}

func TestSwapIntervalUsesGlobal(t *testing.T) {
	c := newContext(&fakeWindow{})
	var interval int
	c.swapInterval = func(i int) { interval = i }
	c.SetSwapInterval(1)
	assert.Equal(t, 1, interval)
}

func TestReportGLFWError(t *testing.T) {
	var code int
	var desc string
	p := NewPlatform(func(c int, d string) { code, desc = c, d }, nil)

	p.report(&glfw.Error{Code: glfw.APIUnavailable, Desc: "no GL"})
	assert.Equal(t, int(glfw.APIUnavailable), code)
	assert.Equal(t, "no GL", desc)

	p.report(errors.New("plain failure"))
	assert.Equal(t, 0, code)
	assert.Equal(t, "plain failure", desc)
}

func TestReportWithoutHandler(t *testing.T) {
	p := NewPlatform(nil, nil)
	assert.NotPanics(t, func() { p.report(errors.New("ignored")) })
}

func TestNewContextRecoversGLFWPanic(t *testing.T) {
	var code int
	var desc string
	p := NewPlatform(func(c int, d string) { code, desc = c, d }, nil)
	p.windowHints = func(graphics.WindowConfig) {
		panic(&glfw.Error{Code: glfw.NotInitialized, Desc: "The GLFW library is not initialized"})
	}
	p.createWindow = func(graphics.WindowConfig) (*glfw.Window, error) {
		t.Fatal("window created after hints failed")
		return nil, nil
	}

	var ctx graphics.Context
	var err error
	require.NotPanics(t, func() {
		ctx, err = p.NewContext(graphics.WindowConfig{Width: 64, Height: 64, Visible: true})
	})
	assert.Nil(t, ctx)
	assert.ErrorContains(t, err, "failed to create window")

	var gerr *glfw.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, glfw.NotInitialized, gerr.Code)
	assert.Equal(t, int(glfw.NotInitialized), code)
	assert.Equal(t, "The GLFW library is not initialized", desc)
}

func TestNewContextReportsCreateWindowError(t *testing.T) {
	var code int
	p := NewPlatform(func(c int, _ string) { code = c }, nil)
	p.windowHints = func(graphics.WindowConfig) {}
	p.createWindow = func(graphics.WindowConfig) (*glfw.Window, error) {
		return nil, &glfw.Error{Code: glfw.VersionUnavailable, Desc: "4.1 unavailable"}
	}

	ctx, err := p.NewContext(graphics.WindowConfig{Width: 64, Height: 64})
	assert.Nil(t, ctx)
	assert.ErrorContains(t, err, "4.1 unavailable")
	assert.Equal(t, int(glfw.VersionUnavailable), code)
}

func TestNewContextRepanicsForeignPanic(t *testing.T) {
	p := NewPlatform(nil, nil)
	p.windowHints = func(graphics.WindowConfig) { panic("boom") }
	assert.PanicsWithValue(t, "boom", func() {
		_, _ = p.NewContext(graphics.WindowConfig{})
	})
}

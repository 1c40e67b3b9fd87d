package glfwcontext

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	graphics "github.com/richinsley/gltriangle/graphics"
)

// ErrorHandler receives windowing errors as a GLFW error code and a
// human-readable description.
type ErrorHandler func(code int, desc string)

// window is the subset of *glfw.Window used after creation.
type window interface {
	MakeContextCurrent()
	ShouldClose() bool
	SetShouldClose(value bool)
	GetFramebufferSize() (width, height int)
	SwapBuffers()
	Destroy()
}

// Platform initializes and terminates GLFW and creates windows with a
// 4.1 core, forward compatible OpenGL context.
type Platform struct {
	OnError ErrorHandler
	Logger  *slog.Logger

	// windowHints and createWindow call into GLFW; GLFW panics with a
	// *glfw.Error when they are used on an uninitialized library.
	windowHints  func(cfg graphics.WindowConfig)
	createWindow func(cfg graphics.WindowConfig) (*glfw.Window, error)
}

// NewPlatform returns a Platform reporting windowing errors to onError.
func NewPlatform(onError ErrorHandler, logger *slog.Logger) *Platform {
	if logger == nil {
		logger = slog.Default()
	}
	return &Platform{
		OnError:      onError,
		Logger:       logger,
		windowHints:  setWindowHints,
		createWindow: createWindow,
	}
}

// Init initializes GLFW. Must be called from the main thread.
func (p *Platform) Init() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		p.report(err)
		return fmt.Errorf("failed to initialize glfw: %w", err)
	}
	p.Logger.Info("GLFW initialized")
	return nil
}

// Terminate shuts GLFW down. Must be called from the main thread.
func (p *Platform) Terminate() {
	glfw.Terminate()
	p.Logger.Info("GLFW terminated")
}

// NewContext creates a window and its OpenGL context. The context is not made
// current. GLFW usage errors, such as an uninitialized library after a
// display could not be opened, are returned instead of panicking.
func (p *Platform) NewContext(cfg graphics.WindowConfig) (ctx graphics.Context, err error) {
	defer func() {
		if r := recover(); r != nil {
			gerr, ok := r.(*glfw.Error)
			if !ok {
				panic(r)
			}
			p.report(gerr)
			ctx, err = nil, fmt.Errorf("failed to create window: %w", gerr)
		}
	}()

	p.windowHints(cfg)
	win, err := p.createWindow(cfg)
	if err != nil {
		p.report(err)
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	c := newContext(win)
	win.SetKeyCallback(c.onKey)
	win.SetFramebufferSizeCallback(c.onFramebufferSize)
	return c, nil
}

func setWindowHints(cfg graphics.WindowConfig) {
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	if cfg.Visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}
}

func createWindow(cfg graphics.WindowConfig) (*glfw.Window, error) {
	return glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
}

func (p *Platform) report(err error) {
	if p.OnError == nil {
		return
	}
	var gerr *glfw.Error
	if errors.As(err, &gerr) {
		p.OnError(int(gerr.Code), gerr.Desc)
		return
	}
	p.OnError(0, err.Error())
}

// Context is a GLFW window and the OpenGL context bound to it.
type Context struct {
	window   window
	onResize func(width, height int)

	// swapInterval and pollEvents operate on GLFW global state and are
	// fields so the callbacks can be exercised without a display.
	swapInterval func(int)
	pollEvents   func()
}

func newContext(w window) *Context {
	return &Context{
		window:       w,
		swapInterval: glfw.SwapInterval,
		pollEvents:   glfw.PollEvents,
	}
}

// onKey runs from inside PollEvents. Escape only flags the window for
// closing; the render loop notices on its next iteration.
func (c *Context) onKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		c.window.SetShouldClose(true)
	}
}

// onFramebufferSize runs from inside PollEvents. A minimized window reports
// a zero size, which is not forwarded.
func (c *Context) onFramebufferSize(_ *glfw.Window, width, height int) {
	if width <= 0 || height <= 0 || c.onResize == nil {
		return
	}
	c.onResize(width, height)
}

// MakeCurrent makes the context current for the calling goroutine.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

// SetSwapInterval sets the number of refreshes to wait before presenting.
// The context must be current.
func (c *Context) SetSwapInterval(interval int) {
	c.swapInterval(interval)
}

func (c *Context) SetResizeCallback(f func(width, height int)) {
	c.onResize = f
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

func (c *Context) SetShouldClose(value bool) {
	c.window.SetShouldClose(value)
}

func (c *Context) EndFrame() {
	c.window.SwapBuffers()
	c.pollEvents()
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

func (c *Context) IsGLES() bool {
	return false
}

func (c *Context) Time() float64 {
	return glfw.GetTime()
}

// Shutdown destroys the window. GLFW itself is left running.
func (c *Context) Shutdown() {
	c.window.Destroy()
}

var (
	_ graphics.Platform = (*Platform)(nil)
	_ graphics.Context  = (*Context)(nil)
)

package graphics

// WindowConfig describes the window and GL context requested from a Platform.
type WindowConfig struct {
	Width   int
	Height  int
	Title   string
	Visible bool
}

// Platform owns the windowing subsystem. Init must succeed before NewContext
// is called, and Terminate must be called exactly once after every context
// created from it has been shut down.
type Platform interface {
	Init() error
	NewContext(cfg WindowConfig) (Context, error)
	Terminate()
}

// Context defines the interface for a window/surface and its OpenGL context.
// All methods must be called from the thread that made the context current.
type Context interface {
	MakeCurrent()
	SetSwapInterval(interval int)
	// SetResizeCallback registers f to be called from EndFrame's event poll
	// whenever the framebuffer changes pixel size.
	SetResizeCallback(f func(width, height int))
	ShouldClose() bool
	SetShouldClose(value bool)
	// EndFrame presents the back buffer and then polls pending window events.
	EndFrame()
	GetFramebufferSize() (int, int)
	IsGLES() bool
	Time() float64
	Shutdown()
}

// Package graphicstest provides in-memory implementations of the graphics
// contracts that record every call, for use in tests.
package graphicstest

import (
	"fmt"
	"strings"

	graphics "github.com/richinsley/gltriangle/graphics"
)

// Recorder is a shared, ordered log of calls made on the fakes.
type Recorder struct {
	Calls []string
}

func (r *Recorder) record(format string, args ...any) {
	if r == nil {
		return
	}
	r.Calls = append(r.Calls, fmt.Sprintf(format, args...))
}

// Index returns the position of the first call equal to call, or -1.
func (r *Recorder) Index(call string) int {
	for i, c := range r.Calls {
		if c == call {
			return i
		}
	}
	return -1
}

// LastIndex returns the position of the last call equal to call, or -1.
func (r *Recorder) LastIndex(call string) int {
	for i := len(r.Calls) - 1; i >= 0; i-- {
		if r.Calls[i] == call {
			return i
		}
	}
	return -1
}

// Count returns how many calls start with prefix.
func (r *Recorder) Count(prefix string) int {
	n := 0
	for _, c := range r.Calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Platform is a fake windowing subsystem handing out a single Context.
type Platform struct {
	Rec        *Recorder
	InitErr    error
	ContextErr error
	Context    *Context

	Inits      int
	Terminates int
	Configs    []graphics.WindowConfig
}

// NewPlatform returns a Platform, Context and Device sharing one Recorder.
func NewPlatform(width, height int) (*Platform, *Context, *Device) {
	rec := &Recorder{}
	ctx := &Context{Rec: rec, Width: width, Height: height}
	return &Platform{Rec: rec, Context: ctx}, ctx, NewDevice(rec)
}

func (p *Platform) Init() error {
	p.Inits++
	p.Rec.record("Init")
	return p.InitErr
}

func (p *Platform) NewContext(cfg graphics.WindowConfig) (graphics.Context, error) {
	p.Configs = append(p.Configs, cfg)
	p.Rec.record("NewContext")
	if p.ContextErr != nil {
		return nil, p.ContextErr
	}
	return p.Context, nil
}

func (p *Platform) Terminate() {
	p.Terminates++
	p.Rec.record("Terminate")
}

// Context is a fake window. Events scheduled with At are delivered during the
// poll of the given frame, the way a real event queue dispatches callbacks.
type Context struct {
	Rec    *Recorder
	Width  int
	Height int
	GLES   bool

	Closed bool
	// CloseAfter sets the close flag once this many frames have been
	// presented. Zero never closes.
	CloseAfter int

	Interval int
	// SwapIntervals holds the swap interval in effect at each present.
	SwapIntervals []int
	Frames        int
	Current       bool
	Shutdowns     int

	resize func(width, height int)
	events map[int][]func()
}

// At schedules f to run during the event poll that follows frame n (1-based).
func (c *Context) At(frame int, f func()) {
	if c.events == nil {
		c.events = make(map[int][]func())
	}
	c.events[frame] = append(c.events[frame], f)
}

// Resize simulates the window system reporting a new framebuffer size.
func (c *Context) Resize(width, height int) {
	c.Width, c.Height = width, height
	c.Rec.record("Resize %d %d", width, height)
	if c.resize != nil && width > 0 && height > 0 {
		c.resize(width, height)
	}
}

// PressEscape simulates the key handler reacting to an escape press.
func (c *Context) PressEscape() {
	c.Rec.record("Escape")
	c.Closed = true
}

func (c *Context) MakeCurrent() {
	c.Current = true
	c.Rec.record("MakeCurrent")
}

func (c *Context) SetSwapInterval(interval int) {
	c.Interval = interval
	c.Rec.record("SetSwapInterval %d", interval)
}

func (c *Context) SetResizeCallback(f func(width, height int)) {
	c.resize = f
}

func (c *Context) ShouldClose() bool { return c.Closed }

func (c *Context) SetShouldClose(value bool) {
	c.Rec.record("SetShouldClose %t", value)
	c.Closed = value
}

func (c *Context) EndFrame() {
	c.Rec.record("SwapBuffers")
	c.SwapIntervals = append(c.SwapIntervals, c.Interval)
	c.Frames++
	c.Rec.record("PollEvents")
	for _, f := range c.events[c.Frames] {
		f()
	}
	if c.CloseAfter > 0 && c.Frames >= c.CloseAfter {
		c.Closed = true
	}
}

func (c *Context) GetFramebufferSize() (int, int) { return c.Width, c.Height }

func (c *Context) IsGLES() bool { return c.GLES }

func (c *Context) Time() float64 { return float64(c.Frames) / 60 }

func (c *Context) Shutdown() {
	c.Shutdowns++
	c.Current = false
	c.Rec.record("Shutdown")
}

var (
	_ graphics.Platform = (*Platform)(nil)
	_ graphics.Context  = (*Context)(nil)
	_ graphics.Device   = (*Device)(nil)
)

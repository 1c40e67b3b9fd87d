package renderer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	graphics "github.com/richinsley/gltriangle/graphics"
	shader "github.com/richinsley/gltriangle/shader"
)

// State is the render loop state.
type State int

const (
	StateRunning State = iota
	StateClosing
)

func (s State) String() string {
	if s == StateClosing {
		return "closing"
	}
	return "running"
}

// DefaultClearColor is the background behind the triangle.
var DefaultClearColor = mgl32.Vec4{0.2, 0.3, 0.3, 1.0}

// SourceFunc picks the shader sources once the kind of context is known.
type SourceFunc func(isGLES bool) (shader.Sources, error)

type Config struct {
	Window graphics.WindowConfig
	// Sources defaults to the built-in triangle shaders.
	Sources SourceFunc
	// ClearColor defaults to DefaultClearColor.
	ClearColor *mgl32.Vec4
}

// Renderer owns the window, its context and every GPU object drawn into it.
// All methods must be called from the thread that created it.
type Renderer struct {
	platform   graphics.Platform
	context    graphics.Context
	device     graphics.Device
	logger     *slog.Logger
	program    *shader.Program
	mesh       *Mesh
	clearColor mgl32.Vec4
	state      State
	frames     int64
	closed     bool
}

// New brings up the windowing subsystem, a window with a current context,
// the triangle geometry and its shader program. On any failure everything
// acquired so far is released before the error is returned.
func New(platform graphics.Platform, device graphics.Device, cfg Config, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Renderer{
		platform:   platform,
		device:     device,
		logger:     logger,
		clearColor: DefaultClearColor,
	}
	if cfg.ClearColor != nil {
		r.clearColor = *cfg.ClearColor
	}

	// Terminate is safe on a subsystem that failed to initialize and releases
	// whatever it allocated before failing.
	if err := platform.Init(); err != nil {
		platform.Terminate()
		return nil, fmt.Errorf("failed to initialize graphics: %w", err)
	}

	ctx, err := platform.NewContext(cfg.Window)
	if err != nil {
		platform.Terminate()
		return nil, fmt.Errorf("failed to create graphics context: %w", err)
	}
	r.context = ctx

	if err := r.init(cfg); err != nil {
		r.Shutdown()
		return nil, err
	}
	return r, nil
}

func (r *Renderer) init(cfg Config) error {
	r.context.SetResizeCallback(r.onResize)
	r.context.MakeCurrent()
	r.context.SetSwapInterval(1)

	if err := r.device.Init(); err != nil {
		return err
	}
	r.device.ClearColor(r.clearColor[0], r.clearColor[1], r.clearColor[2], r.clearColor[3])

	r.mesh = UploadMesh(r.device, triangleVertices)

	sources := cfg.Sources
	if sources == nil {
		sources = func(isGLES bool) (shader.Sources, error) { return shader.Triangle(isGLES), nil }
	}
	src, err := sources(r.context.IsGLES())
	if err != nil {
		return fmt.Errorf("failed to prepare shader sources: %w", err)
	}

	r.program, err = shader.Build(r.device, src, r.logger)
	if err != nil {
		return fmt.Errorf("failed to create shader program: %w", err)
	}
	r.program.Use()
	return nil
}

// onResize runs from the context's event poll.
func (r *Renderer) onResize(width, height int) {
	r.logger.Debug("framebuffer resized", "width", width, "height", height)
	r.device.Viewport(0, 0, int32(width), int32(height))
}

// RenderFrame draws one frame into the current framebuffer without
// presenting it.
func (r *Renderer) RenderFrame() {
	width, height := r.context.GetFramebufferSize()
	r.draw(width, height)
}

func (r *Renderer) draw(width, height int) {
	r.device.Viewport(0, 0, int32(width), int32(height))
	r.device.Clear()
	r.program.Use()
	r.mesh.Draw()
}

// Run renders and presents frames until the close flag is set, either by the
// window (escape, close button) or by ctx being cancelled. The flag is only
// checked between frames.
func (r *Renderer) Run(ctx context.Context) {
	r.logger.Info("starting render loop")
	for {
		if ctx.Err() != nil {
			r.context.SetShouldClose(true)
		}
		if r.context.ShouldClose() {
			break
		}

		r.RenderFrame()
		r.context.EndFrame()
		r.frames++
	}
	r.state = StateClosing
	r.logger.Info("render loop finished", "frames", r.frames)
}

// State reports whether the loop is still running.
func (r *Renderer) State() State {
	return r.state
}

// Frames is the number of frames presented or recorded.
func (r *Renderer) Frames() int64 {
	return r.frames
}

// Shutdown releases the program, buffer and vertex array while the context is
// still current, then destroys the window and terminates the windowing
// subsystem. Only the first call has any effect.
func (r *Renderer) Shutdown() {
	if r.closed {
		return
	}
	r.closed = true
	r.state = StateClosing

	r.program.Release()
	r.mesh.Release()
	r.context.Shutdown()
	r.platform.Terminate()
}

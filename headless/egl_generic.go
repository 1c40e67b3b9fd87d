//go:build !linux

package headless

import (
	"fmt"
	"log/slog"

	graphics "github.com/richinsley/gltriangle/graphics"
)

// Supported reports whether headless EGL contexts can be created on this OS.
const Supported = false

type Platform struct {
	Logger *slog.Logger
}

func NewPlatform(logger *slog.Logger) *Platform {
	return &Platform{Logger: logger}
}

func (p *Platform) Init() error { return nil }

func (p *Platform) Terminate() {}

func (p *Platform) NewContext(graphics.WindowConfig) (graphics.Context, error) {
	return nil, fmt.Errorf("egl headless rendering is not supported on this platform")
}

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lmittmann/tint"
)

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

// New returns a colourized logger writing to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
	}))
}

// GLFWErrorHandler logs windowing errors reported with a code and description.
func GLFWErrorHandler(logger *slog.Logger) func(code int, desc string) {
	return func(code int, desc string) {
		logger.Error("glfw error", "code", fmt.Sprintf("0x%05X", code), "desc", desc)
	}
}

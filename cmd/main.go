package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	encoder "github.com/richinsley/gltriangle/encoder"
	gldevice "github.com/richinsley/gltriangle/gldevice"
	glfwcontext "github.com/richinsley/gltriangle/glfwcontext"
	graphics "github.com/richinsley/gltriangle/graphics"
	headless "github.com/richinsley/gltriangle/headless"
	logging "github.com/richinsley/gltriangle/logging"
	options "github.com/richinsley/gltriangle/options"
	renderer "github.com/richinsley/gltriangle/renderer"
	shader "github.com/richinsley/gltriangle/shader"
	translator "github.com/richinsley/gltriangle/translator"
)

// The GL context and the windowing event loop are bound to the main thread.
func init() {
	runtime.LockOSThread()
}

func platformFor(opts *options.Options, logger *slog.Logger) graphics.Platform {
	if *opts.Mode == options.ModeRecord && headless.Supported {
		return headless.NewPlatform(logger)
	}
	return glfwcontext.NewPlatform(logging.GLFWErrorHandler(logger), logger)
}

func sourcesFor(ctx context.Context, opts *options.Options) renderer.SourceFunc {
	if !*opts.Translate {
		return nil
	}
	return func(isGLES bool) (shader.Sources, error) {
		return translator.Translate(ctx, shader.Portable(), isGLES)
	}
}

func record(ctx context.Context, r *renderer.Renderer, opts *options.Options, logger *slog.Logger) error {
	enc := encoder.New(encoder.Settings{
		Width:      *opts.Width,
		Height:     *opts.Height,
		FPS:        *opts.FPS,
		Codec:      *opts.Codec,
		OutputFile: *opts.OutputFile,
		FFMPEGPath: *opts.FFMPEGPath,
	}, logger)
	enc.Start()

	n, err := r.RunOffscreen(ctx, enc, renderer.Recording{
		Width:    *opts.Width,
		Height:   *opts.Height,
		Frames:   opts.TotalFrames(),
		Progress: os.Stderr,
	})
	// ErrClosed only says ffmpeg went away; Close knows why.
	if cerr := enc.Close(); err == nil || (errors.Is(err, encoder.ErrClosed) && cerr != nil) {
		err = cerr
	}
	if err != nil {
		return err
	}
	logger.Info("recorded frames", "frames", n, "output", *opts.OutputFile)
	return nil
}

func run(opts *options.Options, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recording := *opts.Mode == options.ModeRecord
	cfg := renderer.Config{
		Window: graphics.WindowConfig{
			Width:   *opts.Width,
			Height:  *opts.Height,
			Title:   *opts.Title,
			Visible: !recording,
		},
		Sources: sourcesFor(ctx, opts),
	}

	r, err := renderer.New(platformFor(opts, logger), gldevice.New(logger), cfg, logger)
	if err != nil {
		return err
	}
	defer r.Shutdown()

	if recording {
		return record(ctx, r, opts, logger)
	}
	r.Run(ctx)
	return nil
}

func main() {
	opts, err := options.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *opts.Help {
		fmt.Println("OpenGL triangle viewer/recorder")
		flag.PrintDefaults()
		return
	}

	level, err := logging.ParseLevel(*opts.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, level)
	slog.SetDefault(logger)

	if err := opts.Validate(); err != nil {
		logger.Error("invalid options", "error", err)
		os.Exit(1)
	}

	if err := run(opts, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

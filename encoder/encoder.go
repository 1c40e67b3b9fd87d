package encoder

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ErrClosed is returned when writing to an encoder that has stopped.
var ErrClosed = errors.New("encoder closed")

// Frame represents a single rendered frame's data, ready for encoding.
type Frame struct {
	Pixels []byte
	PTS    int64
}

// Settings describes the raw RGBA stream and the file it is encoded into.
type Settings struct {
	Width      int
	Height     int
	FPS        int
	Codec      string
	OutputFile string
	FFMPEGPath string
}

// FrameSize is the byte size of one tightly packed RGBA frame.
func (s Settings) FrameSize() int {
	return s.Width * s.Height * 4
}

// Args returns the ffmpeg input and output arguments. Frames are read back
// bottom-up from GL, so the output is flipped vertically.
func Args(s Settings) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"format":    "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", s.Width, s.Height),
		"framerate": s.FPS,
	}

	outputArgs = ffmpeg.KwArgs{
		"vf":      "vflip",
		"pix_fmt": "yuv420p",
	}
	if s.Codec == "hevc" {
		outputArgs["c:v"] = "libx265"
		if len(s.OutputFile) >= 4 && s.OutputFile[len(s.OutputFile)-4:] == ".mp4" {
			outputArgs["tag:v"] = "hvc1"
		}
	} else {
		outputArgs["c:v"] = "libx264"
	}
	return
}

// Encoder is the consumer side of a recording. Frames written to it are
// streamed over a pipe into an ffmpeg process from a separate goroutine.
// WriteFrame and Close must be called from a single producer goroutine.
type Encoder struct {
	settings Settings
	logger   *slog.Logger
	frames   chan *Frame
	done     chan error
	// stopped is closed once the consumer process has exited.
	stopped chan struct{}
	closed  bool
	err     error
	// run consumes the raw stream until EOF; it defaults to ffmpeg.
	run func(r io.Reader) error
}

// New returns an encoder for settings. Start must be called before frames are
// written.
func New(settings Settings, logger *slog.Logger) *Encoder {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Encoder{
		settings: settings,
		logger:   logger,
		frames:   make(chan *Frame, 3),
		done:     make(chan error, 1),
		stopped:  make(chan struct{}),
	}
	e.run = e.runFFmpeg
	return e
}

func (e *Encoder) runFFmpeg(r io.Reader) error {
	inputArgs, outputArgs := Args(e.settings)
	cmd := ffmpeg.Input("pipe:", inputArgs).
		Output(e.settings.OutputFile, outputArgs).
		OverWriteOutput().WithInput(r).ErrorToStdOut()
	if e.settings.FFMPEGPath != "" {
		cmd = cmd.SetFfmpegPath(e.settings.FFMPEGPath)
	}
	return cmd.Run()
}

// Start launches the consumer goroutine.
func (e *Encoder) Start() {
	go e.consume()
}

func (e *Encoder) consume() {
	pipeReader, pipeWriter := io.Pipe()

	errc := make(chan error, 1)
	go func() {
		err := e.run(pipeReader)
		// Unblock writes if the consumer exits before EOF.
		pipeReader.CloseWithError(ErrClosed)
		close(e.stopped)
		errc <- err
	}()

	var writeErr error
	for frame := range e.frames {
		if writeErr != nil {
			continue
		}
		if _, err := pipeWriter.Write(frame.Pixels); err != nil {
			writeErr = fmt.Errorf("failed to write frame %d: %w", frame.PTS, err)
			e.logger.Error("encoder write failed", "pts", frame.PTS, "error", err)
		}
	}
	pipeWriter.Close()

	runErr := <-errc
	if runErr != nil {
		e.done <- fmt.Errorf("ffmpeg failed: %w", runErr)
		return
	}
	e.done <- writeErr
}

// WriteFrame hands a frame to the consumer. The encoder takes ownership of
// frame.Pixels. It returns ErrClosed after Close, or once ffmpeg has exited;
// Close then reports why.
func (e *Encoder) WriteFrame(frame *Frame) error {
	if e.closed {
		return ErrClosed
	}
	if len(frame.Pixels) != e.settings.FrameSize() {
		return fmt.Errorf("frame %d has %d bytes, want %d", frame.PTS, len(frame.Pixels), e.settings.FrameSize())
	}

	select {
	case <-e.stopped:
		return ErrClosed
	default:
	}
	select {
	case e.frames <- frame:
		return nil
	case <-e.stopped:
		return ErrClosed
	}
}

// Close signals the end of the stream and waits for ffmpeg to finish. Later
// calls return the same result.
func (e *Encoder) Close() error {
	if e.closed {
		return e.err
	}
	e.closed = true
	close(e.frames)
	e.err = <-e.done
	if e.err == nil {
		e.logger.Info("recording finished", "output", e.settings.OutputFile)
	}
	return e.err
}

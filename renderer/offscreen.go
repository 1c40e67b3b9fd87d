package renderer

import (
	"context"
	"fmt"
	"io"

	encoder "github.com/richinsley/gltriangle/encoder"
	"github.com/schollz/progressbar/v3"
)

// FrameWriter consumes recorded frames in presentation order.
type FrameWriter interface {
	WriteFrame(frame *encoder.Frame) error
}

// Recording describes an offscreen capture.
type Recording struct {
	Width  int
	Height int
	Frames int
	// Progress receives a progress bar; nil disables it.
	Progress io.Writer
}

// RunOffscreen renders rec.Frames frames into an offscreen framebuffer of the
// recording size and hands each one to out. Presentation is not synced to
// the display. Cancelling ctx or setting the close flag ends the recording
// early without error; the number of frames written is returned.
func (r *Renderer) RunOffscreen(ctx context.Context, out FrameWriter, rec Recording) (int, error) {
	fbo, err := r.device.CreateFramebuffer(rec.Width, rec.Height)
	if err != nil {
		return 0, fmt.Errorf("failed to create offscreen framebuffer: %w", err)
	}
	defer r.device.DeleteFramebuffer(fbo)

	r.context.SetSwapInterval(0)

	progress := rec.Progress
	if progress == nil {
		progress = io.Discard
	}
	bar := progressbar.NewOptions64(int64(rec.Frames),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("recording"),
		progressbar.OptionShowCount(),
	)
	defer bar.Close()

	r.logger.Info("starting offscreen render", "frames", rec.Frames, "width", rec.Width, "height", rec.Height)

	written := 0
	for i := 0; i < rec.Frames; i++ {
		if ctx.Err() != nil {
			r.context.SetShouldClose(true)
		}
		if r.context.ShouldClose() {
			r.logger.Warn("recording interrupted", "frames", written, "wanted", rec.Frames)
			break
		}

		r.device.BindFramebuffer(fbo)
		r.draw(rec.Width, rec.Height)
		pixels := make([]byte, rec.Width*rec.Height*4)
		r.device.ReadPixels(rec.Width, rec.Height, pixels)
		r.device.BindFramebuffer(0)

		if err := out.WriteFrame(&encoder.Frame{Pixels: pixels, PTS: int64(i)}); err != nil {
			return written, fmt.Errorf("failed to write frame %d: %w", i, err)
		}
		written++
		r.frames++

		r.context.EndFrame()
		bar.Add(1)
	}

	r.state = StateClosing
	return written, nil
}

// Package video holds the frame sinks that consume the composed frame
// stream: an ffmpeg encoder pipe, a PNG sequence writer and a memory sink.
package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/ivlev/scenereel/internal/config"
)

// Sink receives frames in strictly increasing index order. Close finalizes
// a complete render; Abort discards or marks partial output.
type Sink interface {
	WriteFrame(index int, frame *image.RGBA) error
	Close() error
	Abort() error
}

// ErrOutOfOrder is returned when a frame index does not follow the last one.
var ErrOutOfOrder = errors.New("frame out of order")

// sequence enforces strictly increasing, gap-free frame indexes.
type sequence struct {
	next int
}

func (s *sequence) check(index int) error {
	if index != s.next {
		return fmt.Errorf("%w: got %d, want %d", ErrOutOfOrder, index, s.next)
	}
	s.next++
	return nil
}

// FFmpegOptions configures the encoder process.
type FFmpegOptions struct {
	Binary  string // defaults to "ffmpeg"
	Encoder string // ffmpeg encoder name, e.g. libx264 or h264_nvenc
	CRF     int
	FPS     int
	Width   int
	Height  int
	Output  string
}

// FFmpegSink pipes raw RGBA frames to an ffmpeg process.
type FFmpegSink struct {
	opts  FFmpegOptions
	cmd   *exec.Cmd
	stdin io.WriteCloser
	log   bytes.Buffer
	seq   sequence
}

// NewFFmpegSink starts ffmpeg. Cancelling ctx kills the process.
func NewFFmpegSink(ctx context.Context, opts FFmpegOptions) (*FFmpegSink, error) {
	if opts.Binary == "" {
		opts.Binary = "ffmpeg"
	}
	if opts.Encoder == "" {
		opts.Encoder = "libx264"
	}
	s := &FFmpegSink{opts: opts}
	cmd := exec.CommandContext(ctx, opts.Binary, s.Args()...)
	cmd.Stdout = &s.log
	cmd.Stderr = &s.log

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	s.cmd, s.stdin = cmd, stdin
	return s, nil
}

// Args is the ffmpeg command line for the configured options.
func (s *FFmpegSink) Args() []string {
	o := s.opts
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", o.Width, o.Height),
		"-framerate", strconv.Itoa(o.FPS),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", o.Encoder,
	}
	args = append(args, QualityArgs(o.Encoder, o.CRF)...)
	return append(args, o.Output)
}

// QualityArgs maps a CRF-style quality to each encoder's own knob.
func QualityArgs(encoder string, crf int) []string {
	switch encoder {
	case "h264_videotoolbox", "hevc_videotoolbox":
		// VideoToolbox ignores -crf; approximate with a bitrate.
		bitrate := max(1000, (52-crf)*250)
		return []string{"-b:v", fmt.Sprintf("%dk", bitrate)}
	case "h264_nvenc", "hevc_nvenc":
		return []string{"-cq", strconv.Itoa(crf)}
	case "libvpx-vp9":
		return []string{"-crf", strconv.Itoa(crf), "-b:v", "0"}
	case "libx265":
		return []string{"-crf", strconv.Itoa(crf), "-preset", "medium", "-tag:v", "hvc1"}
	default: // libx264
		return []string{"-crf", strconv.Itoa(crf), "-preset", "medium"}
	}
}

func (s *FFmpegSink) WriteFrame(index int, frame *image.RGBA) error {
	if err := s.seq.check(index); err != nil {
		return err
	}
	if err := writeRawRGBA(s.stdin, frame); err != nil {
		return fmt.Errorf("write raw error: %w", err)
	}
	return nil
}

// Close flushes the pipe and waits for ffmpeg to finish the file.
func (s *FFmpegSink) Close() error {
	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w: %s", err, s.log.String())
	}
	return nil
}

// Abort stops ffmpeg and removes the partial output file.
func (s *FFmpegSink) Abort() error {
	s.stdin.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	if err := os.Remove(s.opts.Output); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(bounds)
		draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}

// NewSink builds the sink named by cfg.Sink writing to output.
func NewSink(ctx context.Context, cfg config.Config, encoder, output string) (Sink, error) {
	width, height, err := cfg.Resolution()
	if err != nil {
		return nil, err
	}
	switch cfg.Sink {
	case "png":
		return NewPNGSink(output)
	case "ffmpeg", "":
		if dir := filepath.Dir(output); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		return NewFFmpegSink(ctx, FFmpegOptions{
			Encoder: encoder,
			CRF:     cfg.CRF,
			FPS:     cfg.FPS,
			Width:   width,
			Height:  height,
			Output:  output,
		})
	}
	return nil, fmt.Errorf("unknown sink %q", cfg.Sink)
}

package video

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
)

// IncompleteMarker is written into a PNG sequence directory whose render
// did not finish.
const IncompleteMarker = "INCOMPLETE"

// PNGSink writes one PNG per frame into a directory.
type PNGSink struct {
	dir     string
	encoder png.Encoder
	seq     sequence
}

// NewPNGSink creates dir if needed and clears a stale incomplete marker.
func NewPNGSink(dir string) (*PNGSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if err := os.Remove(filepath.Join(dir, IncompleteMarker)); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return &PNGSink{dir: dir, encoder: png.Encoder{CompressionLevel: png.BestSpeed}}, nil
}

// FramePath is the file name of frame index.
func (s *PNGSink) FramePath(index int) string {
	return filepath.Join(s.dir, fmt.Sprintf("frame_%06d.png", index))
}

func (s *PNGSink) WriteFrame(index int, frame *image.RGBA) error {
	if err := s.seq.check(index); err != nil {
		return err
	}
	f, err := os.Create(s.FramePath(index))
	if err != nil {
		return err
	}
	if err := s.encoder.Encode(f, frame); err != nil {
		f.Close()
		return fmt.Errorf("encode frame %d: %w", index, err)
	}
	return f.Close()
}

func (s *PNGSink) Close() error {
	return nil
}

// Abort keeps the frames written so far and marks the directory incomplete.
func (s *PNGSink) Abort() error {
	msg := fmt.Sprintf("render stopped after %d frames\n", s.seq.next)
	return os.WriteFile(filepath.Join(s.dir, IncompleteMarker), []byte(msg), 0o644)
}

// MemorySink keeps copies of every frame.
type MemorySink struct {
	mu       sync.Mutex
	seq      sequence
	Frames   []*image.RGBA
	Closed   bool
	Aborted  bool
	Complete bool
}

func (s *MemorySink) WriteFrame(index int, frame *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.seq.check(index); err != nil {
		return err
	}
	cp := image.NewRGBA(frame.Rect)
	copy(cp.Pix, frame.Pix)
	s.Frames = append(s.Frames, cp)
	return nil
}

func (s *MemorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed, s.Complete = true, true
	return nil
}

func (s *MemorySink) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Aborted, s.Complete = true, false
	return nil
}

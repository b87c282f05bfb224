package renderer

// Progress is the normalized position of frame inside [start, start+duration),
// clamped to [0,1]. A window of zero or negative length is a step at start.
func Progress(frame, start, duration int) float64 {
	if duration <= 0 {
		if frame >= start {
			return 1
		}
		return 0
	}
	return Clamp01(float64(frame-start) / float64(duration))
}

// Stagger desynchronizes sibling entrances: child i starts at
// Base + i*Step frames and animates over Length frames.
type Stagger struct {
	Base   int
	Step   int
	Length int
}

// Delay is the first frame of child i.
func (s Stagger) Delay(i int) int {
	return s.Base + i*s.Step
}

// Progress is child i's entrance progress at a window-local frame. It is
// forced to 0 until the child's delay has passed.
func (s Stagger) Progress(frame, i int) float64 {
	d := s.Delay(i)
	if frame < d {
		return 0
	}
	return Progress(frame, d, s.Length)
}

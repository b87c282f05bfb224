// Package timeline lays content units out on a frame axis. Every function is
// a pure recomputation from its inputs; nothing is cached between calls.
package timeline

import (
	"sort"

	"github.com/ivlev/scenereel/internal/config"
	"github.com/ivlev/scenereel/internal/content"
	"github.com/ivlev/scenereel/internal/renderer"
)

// Kind tells padding windows from content windows.
type Kind int

const (
	KindIntro Kind = iota
	KindUnit
	KindOutro
)

func (k Kind) String() string {
	switch k {
	case KindIntro:
		return "intro"
	case KindOutro:
		return "outro"
	}
	return "unit"
}

// Window is the half-open frame range [StartFrame, EndFrame) of one active
// scene. Paired chat windows carry two units.
type Window struct {
	Kind             Kind
	Unit             int // index of the first unit, -1 for padding
	Units            int
	StartFrame       int
	DurationFrames   int
	TransitionFrames int
	EndFrame         int
}

func newWindow(kind Kind, unit, units, start, duration, transition int) Window {
	return Window{
		Kind:             kind,
		Unit:             unit,
		Units:            units,
		StartFrame:       start,
		DurationFrames:   duration,
		TransitionFrames: transition,
		EndFrame:         start + duration,
	}
}

// Contains reports whether frame lies in [StartFrame, EndFrame).
func (w Window) Contains(frame int) bool {
	return frame >= w.StartFrame && frame < w.EndFrame
}

// Local converts a global frame to a window-relative one.
func (w Window) Local(frame int) int {
	return frame - w.StartFrame
}

// Progress is the clamped normalized position of frame inside the window.
func (w Window) Progress(frame int) float64 {
	return renderer.Progress(frame, w.StartFrame, w.DurationFrames)
}

// TransitionWindow spans the cut between two adjacent sections. It is
// symmetric: [Cut-Half, Cut+Half).
type TransitionWindow struct {
	From       int
	To         int
	Type       string
	Cut        int
	Half       int
	StartFrame int
	EndFrame   int
}

// Contains reports whether frame is inside the transition span.
func (t TransitionWindow) Contains(frame int) bool {
	return frame >= t.StartFrame && frame < t.EndFrame
}

// Local is the frame offset from the start of the span.
func (t TransitionWindow) Local(frame int) int {
	return frame - t.StartFrame
}

// Timeline is the full layout of one render.
type Timeline struct {
	FPS         int
	Mode        content.DisplayMode // empty for explainer timelines
	Timing      config.Timing
	Units       int
	Windows     []Window
	Transitions []TransitionWindow
	TotalFrames int
}

// Clamp maps any frame index onto [0, TotalFrames).
func (t *Timeline) Clamp(frame int) int {
	if frame < 0 || t.TotalFrames == 0 {
		return 0
	}
	if frame >= t.TotalFrames {
		return t.TotalFrames - 1
	}
	return frame
}

// WindowAt returns the window active at frame. Out-of-range frames resolve
// to the nearest window instead of failing. ok is false only for an empty
// timeline.
func (t *Timeline) WindowAt(frame int) (int, Window, bool) {
	if len(t.Windows) == 0 {
		return -1, Window{}, false
	}
	frame = t.Clamp(frame)
	i := sort.Search(len(t.Windows), func(i int) bool {
		return t.Windows[i].EndFrame > frame
	})
	if i == len(t.Windows) {
		i = len(t.Windows) - 1
	}
	return i, t.Windows[i], true
}

// TransitionAt returns the transition span covering frame, if any.
func (t *Timeline) TransitionAt(frame int) (TransitionWindow, bool) {
	frame = t.Clamp(frame)
	for _, tr := range t.Transitions {
		if tr.Contains(frame) {
			return tr, true
		}
	}
	return TransitionWindow{}, false
}

// UnitWindow returns the window holding content unit i.
func (t *Timeline) UnitWindow(unit int) (Window, bool) {
	for _, w := range t.Windows {
		if w.Kind == KindUnit && unit >= w.Unit && unit < w.Unit+w.Units {
			return w, true
		}
	}
	return Window{}, false
}

// Seconds converts the total to wall-clock seconds.
func (t *Timeline) Seconds() float64 {
	if t.FPS <= 0 {
		return 0
	}
	return float64(t.TotalFrames) / float64(t.FPS)
}

// Package transition renders the overlay across the cut between two
// adjacent sections.
package transition

import (
	"strings"

	"github.com/ivlev/scenereel/internal/renderer"
	"github.com/ivlev/scenereel/internal/timeline"
)

// Kind is the transition variant tag.
type Kind string

const (
	None        Kind = "none"
	FadeBlack   Kind = "fade-black"
	FadeWhite   Kind = "fade-white"
	Flash       Kind = "flash"
	Blur        Kind = "blur"
	WipeRadial  Kind = "wipe-radial"
	Glitch      Kind = "glitch"
	Pixelate    Kind = "pixelate"
	ZoomThrough Kind = "zoom-through"
)

var kinds = map[Kind]bool{
	FadeBlack: true, FadeWhite: true, Flash: true, Blur: true, WipeRadial: true,
	Glitch: true, Pixelate: true, ZoomThrough: true,
}

// Parse maps a tag to a variant. "fade" is an alias of fade-black. Empty,
// none and cut mean no transition. Unknown tags fall back to fade-black
// with ok=false.
func Parse(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case "", None, "cut":
		return None, true
	case "fade":
		return FadeBlack, true
	}
	if kinds[k] {
		return k, true
	}
	return FadeBlack, false
}

// flashAttack is the number of frames flash takes to reach full strength.
const flashAttack = 3

// State is the evaluated transition at one frame.
type State struct {
	Kind      Kind
	Local     int
	Half      int
	Intensity float64 // 0 at the span edges, 1 at the cut
	Reveal    float64 // monotonic 0..1 across the whole span
	Incoming  bool    // frame is at or past the cut
}

// Active reports whether the state draws anything.
func (s State) Active() bool {
	return s.Kind != None && (s.Intensity > 0 || s.Kind == WipeRadial)
}

// At evaluates the transition span tw at a global frame.
func At(tw timeline.TransitionWindow, frame int) State {
	kind, _ := Parse(tw.Type)
	local := tw.Local(frame)
	return State{
		Kind:      kind,
		Local:     local,
		Half:      tw.Half,
		Intensity: Curve(kind, local, tw.Half),
		Reveal:    renderer.Frames(local, []int{0, 2 * tw.Half}, []float64{0, 1}),
		Incoming:  frame >= tw.Cut,
	}
}

// Curve is the intensity of kind at local frame inside a span of 2*half
// frames. Standard variants rise over the first half and fall over the
// second. Flash peaks within a few frames of the cut and decays slowly.
// Wipe-radial is monotonic and never returns to zero.
func Curve(kind Kind, local, half int) float64 {
	if half <= 0 || kind == None {
		return 0
	}
	switch kind {
	case Flash:
		attack := min(flashAttack, half)
		return renderer.Frames(local, []int{half - attack, half, 2 * half}, []float64{0, 1, 0})
	case WipeRadial:
		return renderer.Frames(local, []int{0, 2 * half}, []float64{0, 1}, renderer.WithEasing(renderer.EaseInOutCubic))
	}
	return renderer.Frames(local, []int{0, half, 2 * half}, []float64{0, 1, 0})
}

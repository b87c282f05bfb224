package config

import "math"

// Semantic seconds for message videos. This is the only definition; the
// pre-flight estimate and the runtime timeline both derive from it.
const (
	TypingSeconds     = 1.5
	DisplaySeconds    = 2.0
	TransitionSeconds = 0.5
	IntroSeconds      = 1.0
	OutroSeconds      = 2.0
)

// Timing is the per-fps frame count of each structural phase.
type Timing struct {
	FPS        int
	Typing     int
	Display    int
	Transition int
	Intro      int
	Outro      int
}

// TimingFor rounds every semantic constant to frames at fps so that 30 and
// 60 fps renders have the same wall-clock length.
func TimingFor(fps int) Timing {
	return Timing{
		FPS:        fps,
		Typing:     SecondsToRoundedFrames(TypingSeconds, fps),
		Display:    SecondsToRoundedFrames(DisplaySeconds, fps),
		Transition: SecondsToRoundedFrames(TransitionSeconds, fps),
		Intro:      SecondsToRoundedFrames(IntroSeconds, fps),
		Outro:      SecondsToRoundedFrames(OutroSeconds, fps),
	}
}

// SecondsToRoundedFrames is round(seconds*fps), never negative.
func SecondsToRoundedFrames(seconds float64, fps int) int {
	if seconds <= 0 || fps <= 0 {
		return 0
	}
	return int(math.Round(seconds * float64(fps)))
}

// SecondsToFrames is ceil(seconds*fps), the rule for content unit durations.
func SecondsToFrames(seconds float64, fps int) int {
	if seconds <= 0 || fps <= 0 {
		return 0
	}
	// Products like 1.1*30 land a few ulps above the integer; ceil would add
	// a whole frame for float noise.
	v := seconds * float64(fps)
	r := math.Round(v)
	if math.Abs(v-r) < 1e-9 {
		return int(r)
	}
	return int(math.Ceil(v))
}

// Default seconds per section type.
var sectionDefaults = map[string]float64{
	"intro":       3,
	"headline":    4,
	"bullet_list": 6,
	"stats":       5,
	"image_hero":  5,
	"comparison":  6,
	"quote":       5,
	"code":        6,
	"outro":       4,
}

// FallbackSectionType is used for unknown section tags.
const FallbackSectionType = "headline"

// SectionDefaultSeconds returns the default for a section type and whether
// the type was recognized. Tags match exactly, like the renderer registry;
// unknown types get the headline default.
func SectionDefaultSeconds(sectionType string) (float64, bool) {
	s, ok := sectionDefaults[sectionType]
	if !ok {
		return sectionDefaults[FallbackSectionType], false
	}
	return s, true
}

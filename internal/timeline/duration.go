package timeline

import (
	"github.com/ivlev/scenereel/internal/config"
	"github.com/ivlev/scenereel/internal/content"
)

// SectionFrames is ceil(seconds*fps) where seconds is the explicit override
// or the type default. known is false when the type fell back to headline.
// Any section yields at least one frame.
func SectionFrames(s content.Section, fps int) (frames int, known bool) {
	seconds, known := config.SectionDefaultSeconds(string(s.Type))
	if s.Duration > 0 {
		seconds = s.Duration
	}
	frames = config.SecondsToFrames(seconds, fps)
	if frames < 1 {
		frames = 1
	}
	return frames, known
}

// SectionTotal is the pre-flight length of an explainer video. Transitions
// are carved out of the adjacent sections, so they add nothing here.
func SectionTotal(sections []content.Section, fps int) int {
	total := 0
	for _, s := range sections {
		f, _ := SectionFrames(s, fps)
		total += f
	}
	return total
}

// MessageUnitFrames is the structural length of one sequencing step: one
// message, or one pair in paired mode.
func MessageUnitFrames(mode content.DisplayMode, tm config.Timing) int {
	switch mode {
	case content.ModeOneAtATime:
		return tm.Typing + tm.Display + tm.Transition
	case content.ModePaired:
		return 2*tm.Typing + tm.Display + tm.Transition
	default:
		return tm.Typing + tm.Display
	}
}

// MessageTransitionFrames is the fade-out tail of a step.
func MessageTransitionFrames(mode content.DisplayMode, tm config.Timing) int {
	if mode == content.ModeOneAtATime || mode == content.ModePaired {
		return tm.Transition
	}
	return 0
}

// Steps is the number of sequencing steps for n messages.
func Steps(n int, mode content.DisplayMode) int {
	if n <= 0 {
		return 0
	}
	if mode == content.ModePaired {
		return (n + 1) / 2
	}
	return n
}

// MessageTotal is the closed-form length of a chat video:
//
//	auto-scroll:   intro + n*(typing+display) + outro
//	one-at-a-time: intro + n*(typing+display+transition) + outro
//	paired:        intro + ceil(n/2)*(2*typing+display+transition) + outro
//
// It is evaluated independently of the builder's cursor walk; the two must
// agree for every n and mode.
func MessageTotal(n int, mode content.DisplayMode, fps int) int {
	tm := config.TimingFor(fps)
	if n <= 0 {
		return tm.Intro + tm.Outro
	}
	switch mode {
	case content.ModeOneAtATime:
		return tm.Intro + n*(tm.Typing+tm.Display+tm.Transition) + tm.Outro
	case content.ModePaired:
		pairs := (n + 1) / 2
		return tm.Intro + pairs*(2*tm.Typing+tm.Display+tm.Transition) + tm.Outro
	default:
		return tm.Intro + n*(tm.Typing+tm.Display) + tm.Outro
	}
}

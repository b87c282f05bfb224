package timeline

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ivlev/scenereel/internal/config"
	"github.com/ivlev/scenereel/internal/content"
)

// FallbackObserver is told about every default substituted for an unknown
// tag. metrics.Recorder satisfies it.
type FallbackObserver interface {
	Fallback(kind, value string)
}

// Builder lays out timelines and reports fallbacks. The zero value is not
// usable; call NewBuilder.
type Builder struct {
	logger   *zap.Logger
	observer FallbackObserver
}

// NewBuilder returns a Builder. observer may be nil.
func NewBuilder(logger *zap.Logger, observer FallbackObserver) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger.With(zap.String("component", "timeline")), observer: observer}
}

func (b *Builder) fallback(kind, value string, fields ...zap.Field) {
	b.logger.Warn("unknown "+kind+", using default", append(fields, zap.String(kind, value))...)
	if b.observer != nil {
		b.observer.Fallback(kind, value)
	}
}

// Build validates the project and lays it out at fps. Invalid projects are
// rejected before any window is computed.
func (b *Builder) Build(p *content.Project, fps int) (*Timeline, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil project", content.ErrInvalidProject)
	}
	if fps <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %d", fps)
	}
	if _, err := p.Validate(); err != nil {
		return nil, err
	}
	switch p.Kind {
	case content.KindChat:
		mode, ok := content.ParseDisplayMode(p.DisplayMode)
		if !ok {
			b.fallback("display_mode", p.DisplayMode)
		}
		return BuildMessages(len(p.Messages), mode, fps), nil
	default:
		for _, s := range p.Sections {
			if !s.Type.Known() {
				b.fallback("section_type", string(s.Type), zap.String("unit_id", s.ID))
			}
		}
		return BuildSections(p.Sections, fps), nil
	}
}

// BuildMessages walks a cursor from the intro padding through every
// sequencing step and closes with the outro padding.
func BuildMessages(n int, mode content.DisplayMode, fps int) *Timeline {
	tm := config.TimingFor(fps)
	steps := Steps(n, mode)
	step := MessageUnitFrames(mode, tm)
	tr := MessageTransitionFrames(mode, tm)

	windows := make([]Window, 0, steps+2)
	cursor := 0
	windows = append(windows, newWindow(KindIntro, -1, 0, cursor, tm.Intro, 0))
	cursor += tm.Intro
	for i := 0; i < steps; i++ {
		unit, units := i, 1
		if mode == content.ModePaired {
			unit = 2 * i
			units = min(2, n-unit)
		}
		windows = append(windows, newWindow(KindUnit, unit, units, cursor, step, tr))
		cursor += step
	}
	windows = append(windows, newWindow(KindOutro, -1, 0, cursor, tm.Outro, 0))
	cursor += tm.Outro

	return &Timeline{
		FPS:         fps,
		Mode:        mode,
		Timing:      tm,
		Units:       n,
		Windows:     windows,
		TotalFrames: cursor,
	}
}

// BuildSections places sections back to back and carves a symmetric
// transition span around every cut whose outgoing section declares one.
func BuildSections(sections []content.Section, fps int) *Timeline {
	tm := config.TimingFor(fps)
	windows := make([]Window, 0, len(sections))
	cursor := 0
	for i, s := range sections {
		d, _ := SectionFrames(s, fps)
		windows = append(windows, newWindow(KindUnit, i, 1, cursor, d, 0))
		cursor += d
	}

	var transitions []TransitionWindow
	for i := 0; i+1 < len(sections); i++ {
		typ, half := sectionTransition(sections[i].Transition, tm)
		if half == 0 {
			continue
		}
		// Neighbouring spans must not overlap: a span may use at most half
		// of either adjacent section.
		half = min(half, windows[i].DurationFrames/2, windows[i+1].DurationFrames/2)
		if half < 1 {
			continue
		}
		windows[i].TransitionFrames = half
		cut := windows[i].EndFrame
		transitions = append(transitions, TransitionWindow{
			From:       i,
			To:         i + 1,
			Type:       typ,
			Cut:        cut,
			Half:       half,
			StartFrame: cut - half,
			EndFrame:   cut + half,
		})
	}

	return &Timeline{
		FPS:         fps,
		Timing:      tm,
		Units:       len(sections),
		Windows:     windows,
		Transitions: transitions,
		TotalFrames: cursor,
	}
}

func sectionTransition(t *content.Transition, tm config.Timing) (string, int) {
	if t == nil {
		return "", 0
	}
	typ := strings.ToLower(strings.TrimSpace(t.Type))
	switch typ {
	case "", "none", "cut":
		return typ, 0
	}
	half := tm.Transition
	if t.Duration > 0 {
		half = config.SecondsToRoundedFrames(t.Duration, tm.FPS)
	}
	return typ, half
}

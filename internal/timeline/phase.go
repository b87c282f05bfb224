package timeline

import "github.com/ivlev/scenereel/internal/content"

// Phase is the sub-phase of one message inside its window.
type Phase int

const (
	PhaseHidden Phase = iota
	PhaseTyping
	PhaseVisible
	PhaseExit
)

func (p Phase) String() string {
	switch p {
	case PhaseTyping:
		return "typing"
	case PhaseVisible:
		return "visible"
	case PhaseExit:
		return "exit"
	}
	return "hidden"
}

// MessageState is what the compositor needs to draw one message at a frame.
// Local counts frames since the phase began and Length is the phase span;
// settled history messages report Local == Length.
type MessageState struct {
	Unit   int
	Phase  Phase
	Local  int
	Length int
}

// Messages lists the messages on screen at frame, oldest first.
func (t *Timeline) Messages(frame int) []MessageState {
	_, w, ok := t.WindowAt(frame)
	if !ok {
		return nil
	}
	local := w.Local(t.Clamp(frame))
	tm := t.Timing

	switch w.Kind {
	case KindIntro:
		return nil
	case KindOutro:
		if t.Mode != content.ModeAutoScroll || t.Units == 0 {
			return nil
		}
		return settled(0, t.Units, tm.Display)
	}

	switch t.Mode {
	case content.ModeOneAtATime:
		return []MessageState{sequential(w.Unit, local, tm.Typing, tm.Display, w.TransitionFrames)}
	case content.ModePaired:
		out := make([]MessageState, 0, w.Units)
		// First slot: typing [0,T) then visible until the shared exit.
		out = append(out, phaseOf(w.Unit, local, []span{
			{PhaseTyping, 0, tm.Typing},
			{PhaseVisible, tm.Typing, 2*tm.Typing + tm.Display},
			{PhaseExit, 2*tm.Typing + tm.Display, w.DurationFrames},
		}))
		if w.Units > 1 {
			out = append(out, phaseOf(w.Unit+1, local, []span{
				{PhaseTyping, tm.Typing, 2 * tm.Typing},
				{PhaseVisible, 2 * tm.Typing, 2*tm.Typing + tm.Display},
				{PhaseExit, 2*tm.Typing + tm.Display, w.DurationFrames},
			}))
		}
		return visible(out)
	default:
		out := settled(0, w.Unit, tm.Display)
		return append(out, sequential(w.Unit, local, tm.Typing, tm.Display, 0))
	}
}

type span struct {
	phase      Phase
	start, end int
}

func phaseOf(unit, local int, spans []span) MessageState {
	for _, s := range spans {
		if local >= s.start && local < s.end {
			return MessageState{Unit: unit, Phase: s.phase, Local: local - s.start, Length: s.end - s.start}
		}
	}
	return MessageState{Unit: unit, Phase: PhaseHidden}
}

func sequential(unit, local, typing, display, exit int) MessageState {
	return phaseOf(unit, local, []span{
		{PhaseTyping, 0, typing},
		{PhaseVisible, typing, typing + display},
		{PhaseExit, typing + display, typing + display + exit},
	})
}

func settled(from, to, length int) []MessageState {
	out := make([]MessageState, 0, to-from+1)
	for i := from; i < to; i++ {
		out = append(out, MessageState{Unit: i, Phase: PhaseVisible, Local: length, Length: length})
	}
	return out
}

func visible(states []MessageState) []MessageState {
	out := states[:0]
	for _, s := range states {
		if s.Phase != PhaseHidden {
			out = append(out, s)
		}
	}
	return out
}

// Description is a human-readable probe of one frame.
type Description struct {
	Frame      int
	Resolved   int
	Window     int
	Kind       Kind
	Unit       int
	Local      int
	Progress   float64
	Messages   []MessageState
	Transition *TransitionWindow
}

// Describe resolves frame the same way rendering does.
func (t *Timeline) Describe(frame int) Description {
	d := Description{Frame: frame, Resolved: t.Clamp(frame), Window: -1, Unit: -1}
	i, w, ok := t.WindowAt(frame)
	if !ok {
		return d
	}
	d.Window = i
	d.Kind = w.Kind
	d.Unit = w.Unit
	d.Local = w.Local(d.Resolved)
	d.Progress = w.Progress(d.Resolved)
	if t.Mode != "" {
		d.Messages = t.Messages(frame)
	}
	if tr, ok := t.TransitionAt(frame); ok {
		d.Transition = &tr
	}
	return d
}

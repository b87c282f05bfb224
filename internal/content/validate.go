package content

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidProject is matched by every ValidationErrors value.
var ErrInvalidProject = errors.New("invalid project")

// FieldError names the offending field with a JSON-path-like locator.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors is the full list of structural problems of a project.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidProject, strings.Join(parts, "; "))
}

func (v ValidationErrors) Is(target error) bool {
	return target == ErrInvalidProject
}

// Warning is a non-fatal finding: the render proceeds with a fallback.
type Warning struct {
	Field   string
	Value   string
	Message string
}

// Validate checks the structural shape needed to build a timeline. Unknown
// display modes and section types are warnings, not errors.
func (p *Project) Validate() ([]Warning, error) {
	var errs ValidationErrors
	var warns []Warning
	add := func(field, format string, args ...any) {
		errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	switch p.Kind {
	case KindChat:
		if p.Messages == nil {
			add("messages", "required")
		}
		if _, ok := ParseDisplayMode(p.DisplayMode); !ok {
			warns = append(warns, Warning{Field: "displayMode", Value: p.DisplayMode, Message: "unknown display mode, using auto-scroll"})
		}
		seen := make(map[string]int, len(p.Messages))
		for i, m := range p.Messages {
			f := fmt.Sprintf("messages[%d]", i)
			if strings.TrimSpace(m.ID) == "" {
				add(f+".id", "required")
			} else if j, dup := seen[m.ID]; dup {
				add(f+".id", "duplicate of messages[%d]", j)
			} else {
				seen[m.ID] = i
			}
			if m.Text == "" {
				add(f+".text", "required")
			}
			if m.Sender != SenderMe && m.Sender != SenderThem {
				add(f+".sender", "must be %q or %q, got %q", SenderMe, SenderThem, m.Sender)
			}
		}
	case KindExplainer:
		if p.Sections == nil {
			add("sections", "required")
		} else if len(p.Sections) == 0 {
			add("sections", "at least one section is required")
		}
		seen := make(map[string]int, len(p.Sections))
		for i := range p.Sections {
			w := validateSection(&p.Sections[i], fmt.Sprintf("sections[%d]", i), add)
			warns = append(warns, w...)
			id := p.Sections[i].ID
			if id == "" {
				continue
			}
			if j, dup := seen[id]; dup {
				add(fmt.Sprintf("sections[%d].id", i), "duplicate of sections[%d]", j)
			} else {
				seen[id] = i
			}
		}
	default:
		add("kind", "must be %q or %q, got %q", KindChat, KindExplainer, p.Kind)
	}

	if len(errs) > 0 {
		return warns, errs
	}
	return warns, nil
}

func validateSection(s *Section, f string, add func(field, format string, args ...any)) []Warning {
	var warns []Warning
	if strings.TrimSpace(s.ID) == "" {
		add(f+".id", "required")
	}
	if s.Type == "" {
		add(f+".type", "required")
	} else if !s.Type.Known() {
		warns = append(warns, Warning{Field: f + ".type", Value: string(s.Type), Message: "unknown section type, using headline renderer"})
	}
	if s.Duration < 0 {
		add(f+".duration", "must be positive, got %v", s.Duration)
	}
	if s.Transition != nil && s.Transition.Duration < 0 {
		add(f+".transition.duration", "must be positive, got %v", s.Transition.Duration)
	}
	if s.Camera != nil && s.Camera.Intensity < 0 {
		add(f+".camera.intensity", "must not be negative")
	}
	for j, st := range s.Stats {
		if st.Value == "" {
			add(fmt.Sprintf("%s.stats[%d].value", f, j), "required")
		}
		if st.Label == "" {
			add(fmt.Sprintf("%s.stats[%d].label", f, j), "required")
		}
	}
	switch s.Type {
	case SectionImageHero:
		if s.Image == nil || strings.TrimSpace(s.Image.URL) == "" {
			add(f+".image.url", "required for %s", s.Type)
		}
	case SectionQuote:
		if s.Quote == "" {
			add(f+".quote", "required for %s", s.Type)
		}
	case SectionStats:
		if len(s.Stats) == 0 {
			add(f+".stats", "required for %s", s.Type)
		}
	case SectionBulletList:
		if len(s.Bullets) == 0 {
			add(f+".bullets", "required for %s", s.Type)
		}
	}
	return warns
}

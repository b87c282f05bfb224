// Package content defines the authored input of a render: chat messages or
// explainer sections, plus the project file that carries them.
package content

import "strings"

// Sender distinguishes the two sides of a chat.
type Sender string

const (
	SenderMe   Sender = "sender"
	SenderThem Sender = "receiver"
)

// Message is one chat bubble.
type Message struct {
	ID     string `yaml:"id" json:"id"`
	Text   string `yaml:"text" json:"text"`
	Sender Sender `yaml:"sender" json:"sender"`
}

// DisplayMode selects the message sequencing algorithm.
type DisplayMode string

const (
	ModeAutoScroll DisplayMode = "auto-scroll"
	ModeOneAtATime DisplayMode = "one-at-a-time"
	ModePaired     DisplayMode = "paired"
)

// ParseDisplayMode accepts the canonical names. An empty string selects
// auto-scroll; anything unrecognized also returns auto-scroll with ok false.
func ParseDisplayMode(s string) (DisplayMode, bool) {
	switch DisplayMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeAutoScroll, "":
		return ModeAutoScroll, true
	case ModeOneAtATime:
		return ModeOneAtATime, true
	case ModePaired:
		return ModePaired, true
	}
	return ModeAutoScroll, false
}

// SectionType is the closed set of explainer scene tags.
type SectionType string

const (
	SectionIntro      SectionType = "intro"
	SectionHeadline   SectionType = "headline"
	SectionBulletList SectionType = "bullet_list"
	SectionStats      SectionType = "stats"
	SectionImageHero  SectionType = "image_hero"
	SectionComparison SectionType = "comparison"
	SectionQuote      SectionType = "quote"
	SectionCode       SectionType = "code"
	SectionOutro      SectionType = "outro"
)

// SectionTypes lists every known tag.
var SectionTypes = []SectionType{
	SectionIntro, SectionHeadline, SectionBulletList, SectionStats, SectionImageHero,
	SectionComparison, SectionQuote, SectionCode, SectionOutro,
}

// Known reports whether t is one of SectionTypes.
func (t SectionType) Known() bool {
	for _, k := range SectionTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Stat is one tile of a stats grid.
type Stat struct {
	Value  string `yaml:"value" json:"value"`
	Label  string `yaml:"label" json:"label"`
	Prefix string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Suffix string `yaml:"suffix,omitempty" json:"suffix,omitempty"`
}

// Image describes a hero image. URL may be a local path, an http(s) URL or
// "file.pdf#page=N".
type Image struct {
	URL      string `yaml:"url" json:"url"`
	Position string `yaml:"position,omitempty" json:"position,omitempty"` // center|top|bottom|left|right|background
	Fit      string `yaml:"fit,omitempty" json:"fit,omitempty"`           // cover|contain
}

// Column is one side of a comparison.
type Column struct {
	Title string   `yaml:"title" json:"title"`
	Items []string `yaml:"items" json:"items"`
}

// Comparison is the two-column payload of a comparison section.
type Comparison struct {
	Left  Column `yaml:"left" json:"left"`
	Right Column `yaml:"right" json:"right"`
}

// Point is a normalized position in percent of the frame (0..100).
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Camera is the per-section camera motion request.
type Camera struct {
	Type       string  `yaml:"type" json:"type"`
	Intensity  float64 `yaml:"intensity,omitempty" json:"intensity,omitempty"`
	StartScale float64 `yaml:"startScale,omitempty" json:"startScale,omitempty"`
	EndScale   float64 `yaml:"endScale,omitempty" json:"endScale,omitempty"`
	FocusPoint *Point  `yaml:"focusPoint,omitempty" json:"focusPoint,omitempty"`
}

// Transition is declared on the outgoing section of a boundary.
type Transition struct {
	Type     string  `yaml:"type" json:"type"`
	Duration float64 `yaml:"duration,omitempty" json:"duration,omitempty"` // seconds per half
}

// Effect is a toggleable, intensity-scaled overlay.
type Effect struct {
	Enabled   bool    `yaml:"enabled" json:"enabled"`
	Intensity float64 `yaml:"intensity,omitempty" json:"intensity,omitempty"`
}

// VisualStyle is the effect stack. Nil pointers inherit from the project.
type VisualStyle struct {
	ColorGrade string  `yaml:"colorGrade,omitempty" json:"colorGrade,omitempty"`
	Vignette   *Effect `yaml:"vignette,omitempty" json:"vignette,omitempty"`
	Bloom      *Effect `yaml:"bloom,omitempty" json:"bloom,omitempty"`
	Grain      *Effect `yaml:"grain,omitempty" json:"grain,omitempty"`
}

// Merge returns base with the fields set in override replacing it.
func (base VisualStyle) Merge(override *VisualStyle) VisualStyle {
	if override == nil {
		return base
	}
	out := base
	if override.ColorGrade != "" {
		out.ColorGrade = override.ColorGrade
	}
	if override.Vignette != nil {
		out.Vignette = override.Vignette
	}
	if override.Bloom != nil {
		out.Bloom = override.Bloom
	}
	if override.Grain != nil {
		out.Grain = override.Grain
	}
	return out
}

// Section is one explainer scene.
type Section struct {
	ID               string       `yaml:"id" json:"id"`
	Type             SectionType  `yaml:"type" json:"type"`
	Headline         string       `yaml:"headline,omitempty" json:"headline,omitempty"`
	Subheadline      string       `yaml:"subheadline,omitempty" json:"subheadline,omitempty"`
	Body             string       `yaml:"body,omitempty" json:"body,omitempty"`
	Bullets          []string     `yaml:"bullets,omitempty" json:"bullets,omitempty"`
	Stats            []Stat       `yaml:"stats,omitempty" json:"stats,omitempty"`
	Image            *Image       `yaml:"image,omitempty" json:"image,omitempty"`
	Quote            string       `yaml:"quote,omitempty" json:"quote,omitempty"`
	QuoteAttribution string       `yaml:"quoteAttribution,omitempty" json:"quoteAttribution,omitempty"`
	Comparison       *Comparison  `yaml:"comparison,omitempty" json:"comparison,omitempty"`
	Code             string       `yaml:"code,omitempty" json:"code,omitempty"`
	CTA              string       `yaml:"cta,omitempty" json:"cta,omitempty"`
	Duration         float64      `yaml:"duration,omitempty" json:"duration,omitempty"` // seconds
	Camera           *Camera      `yaml:"camera,omitempty" json:"camera,omitempty"`
	Transition       *Transition  `yaml:"transition,omitempty" json:"transition,omitempty"`
	VisualStyle      *VisualStyle `yaml:"visualStyle,omitempty" json:"visualStyle,omitempty"`
}

// Background selects the persistent backdrop of the whole video.
type Background struct {
	Style   string   `yaml:"style,omitempty" json:"style,omitempty"`
	Colors  []string `yaml:"colors,omitempty" json:"colors,omitempty"`
	Speed   float64  `yaml:"speed,omitempty" json:"speed,omitempty"`
	Density int      `yaml:"density,omitempty" json:"density,omitempty"`
}

// Contact is the chat header.
type Contact struct {
	Name   string `yaml:"name" json:"name"`
	Status string `yaml:"status,omitempty" json:"status,omitempty"`
}

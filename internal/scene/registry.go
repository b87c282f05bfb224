package scene

import (
	"image"
	"image/color"

	"github.com/ivlev/scenereel/internal/content"
	"github.com/ivlev/scenereel/internal/renderer"
)

// Frame locates one draw call in time.
type Frame struct {
	Global   int
	Local    int // frames since the section window began; may be negative during transitions
	Duration int
}

// Fade is the entrance progress over the local span [from, to].
func (f Frame) Fade(from, to int, opts ...renderer.Option) float64 {
	return renderer.Fade(f.Local, from, to, opts...)
}

// Theme carries the colors section renderers draw with.
type Theme struct {
	Text   color.NRGBA
	Muted  color.NRGBA
	Accent color.NRGBA
	Panel  color.NRGBA
}

// Scene is everything a section renderer may read. Renderers are pure: the
// same Scene always draws the same pixels.
type Scene struct {
	Canvas  *Canvas
	Section *content.Section
	Frame   Frame
	Theme   Theme
	Image   image.Image // resolved hero image, nil when the section has none
	QR      image.Image // CTA code for outro sections
}

// SectionRenderer draws one section's content layer.
type SectionRenderer func(s *Scene)

var registry = map[content.SectionType]SectionRenderer{
	content.SectionIntro:      drawIntro,
	content.SectionHeadline:   drawHeadline,
	content.SectionBulletList: drawBulletList,
	content.SectionStats:      drawStats,
	content.SectionImageHero:  drawImageHero,
	content.SectionComparison: drawComparison,
	content.SectionQuote:      drawQuote,
	content.SectionCode:       drawCode,
	content.SectionOutro:      drawOutro,
}

// Dispatch returns the renderer for a section tag. Unknown tags get the
// headline renderer and fallback=true.
func Dispatch(t content.SectionType) (r SectionRenderer, fallback bool) {
	if r, ok := registry[t]; ok {
		return r, false
	}
	return drawHeadline, true
}

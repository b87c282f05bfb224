package effects

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/ivlev/scenereel/internal/content"
	"github.com/ivlev/scenereel/internal/renderer"
)

// Grade is a named color-grade preset.
type Grade string

const (
	GradeNone          Grade = "none"
	GradeCinematicWarm Grade = "cinematic-warm"
	GradeCinematicCool Grade = "cinematic-cool"
	GradeVintage       Grade = "vintage"
	GradeHighContrast  Grade = "high-contrast"
	GradeMonochrome    Grade = "monochrome"
	GradeNeon          Grade = "neon"
	GradeMuted         Grade = "muted"
)

// grades maps every preset to a fixed chain of filter functions.
var grades = map[Grade]func(image.Image) *image.NRGBA{
	GradeNone: imaging.Clone,
	GradeCinematicWarm: func(img image.Image) *image.NRGBA {
		out := imaging.AdjustContrast(img, 10)
		out = imaging.AdjustSaturation(out, 10)
		return tint(out, 1.08, 1.0, 0.9)
	},
	GradeCinematicCool: func(img image.Image) *image.NRGBA {
		out := imaging.AdjustContrast(img, 10)
		out = imaging.AdjustSaturation(out, -5)
		return tint(out, 0.92, 1.0, 1.1)
	},
	GradeVintage: func(img image.Image) *image.NRGBA {
		out := imaging.AdjustFunc(img, sepia(0.6))
		out = imaging.AdjustContrast(out, -10)
		return imaging.AdjustBrightness(out, 5)
	},
	GradeHighContrast: func(img image.Image) *image.NRGBA {
		out := imaging.AdjustContrast(img, 40)
		return imaging.AdjustGamma(out, 0.95)
	},
	GradeMonochrome: func(img image.Image) *image.NRGBA {
		return imaging.AdjustContrast(imaging.Grayscale(img), 10)
	},
	GradeNeon: func(img image.Image) *image.NRGBA {
		out := imaging.AdjustSaturation(img, 60)
		out = imaging.AdjustContrast(out, 15)
		return imaging.AdjustBrightness(out, 5)
	},
	GradeMuted: func(img image.Image) *image.NRGBA {
		out := imaging.AdjustSaturation(img, -45)
		out = imaging.AdjustContrast(out, -10)
		return imaging.AdjustBrightness(out, 3)
	},
}

// ParseGrade maps a tag to a preset. Empty means none; unknown tags return
// none with ok=false.
func ParseGrade(s string) (Grade, bool) {
	g := Grade(strings.ToLower(strings.TrimSpace(s)))
	if g == "" {
		return GradeNone, true
	}
	if _, ok := grades[g]; ok {
		return g, true
	}
	return GradeNone, false
}

func tint(img *image.NRGBA, r, g, b float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		c.R = scaleChannel(c.R, r)
		c.G = scaleChannel(c.G, g)
		c.B = scaleChannel(c.B, b)
		return c
	})
}

func sepia(amount float64) func(color.NRGBA) color.NRGBA {
	return func(c color.NRGBA) color.NRGBA {
		r, g, b := float64(c.R), float64(c.G), float64(c.B)
		sr := 0.393*r + 0.769*g + 0.189*b
		sg := 0.349*r + 0.686*g + 0.168*b
		sb := 0.272*r + 0.534*g + 0.131*b
		c.R = clampByte(renderer.Lerp(r, sr, amount))
		c.G = clampByte(renderer.Lerp(g, sg, amount))
		c.B = clampByte(renderer.Lerp(b, sb, amount))
		return c
	}
}

func scaleChannel(v uint8, k float64) uint8 {
	return clampByte(float64(v) * k)
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}

// Stack is the resolved effect stack of one section: a color grade plus
// optional overlays. Zero intensities are disabled.
type Stack struct {
	Grade    Grade
	Vignette float64
	Bloom    float64
	Grain    float64
}

// NewStack resolves v. ok is false when the grade tag was unknown.
func NewStack(v content.VisualStyle) (Stack, bool) {
	g, ok := ParseGrade(v.ColorGrade)
	return Stack{
		Grade:    g,
		Vignette: effectIntensity(v.Vignette, 0.5),
		Bloom:    effectIntensity(v.Bloom, 0.4),
		Grain:    effectIntensity(v.Grain, 0.3),
	}, ok
}

func effectIntensity(e *content.Effect, def float64) float64 {
	if e == nil || !e.Enabled {
		return 0
	}
	if e.Intensity <= 0 {
		return def
	}
	return renderer.Clamp01(e.Intensity)
}

// Empty reports whether Apply would leave the layer unchanged.
func (s Stack) Empty() bool {
	return s.Grade == GradeNone && s.Vignette == 0 && s.Bloom == 0 && s.Grain == 0
}

// Apply runs the stack over layer in place: grade, bloom, vignette, grain.
func (s Stack) Apply(layer *image.RGBA) {
	if s.Empty() {
		return
	}
	b := layer.Bounds()
	if s.Grade != GradeNone {
		graded := grades[s.Grade](layer)
		draw.Draw(layer, b, graded, graded.Bounds().Min, draw.Src)
	}
	if s.Bloom > 0 {
		sigma := 4 + 8*s.Bloom
		glow := imaging.Blur(imaging.AdjustBrightness(layer, 10), sigma)
		screen(layer, glow, 0.35*s.Bloom)
	}
	if s.Vignette > 0 {
		drawVignette(layer, s.Vignette)
	}
	if s.Grain > 0 {
		drawGrain(layer, s.Grain)
	}
}

func drawVignette(dst *image.RGBA, intensity float64) {
	dc := gg.NewContextForRGBA(dst)
	w, h := float64(dc.Width()), float64(dc.Height())
	r := 0.75 * max(w, h)
	g := gg.NewRadialGradient(w/2, h/2, 0.35*min(w, h), w/2, h/2, r)
	g.AddColorStop(0, color.NRGBA{})
	g.AddColorStop(1, color.NRGBA{A: uint8(220 * intensity)})
	dc.SetFillStyle(g)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()
}

// screen blends glow onto dst with the screen operator at opacity.
func screen(dst *image.RGBA, glow *image.NRGBA, opacity float64) {
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		di := dst.PixOffset(b.Min.X, y)
		gi := glow.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			ga := float64(glow.Pix[gi+3]) / 255 * opacity
			a := max(float64(dst.Pix[di+3]), ga*255)
			dst.Pix[di+3] = clampByte(a)
			for c := 0; c < 3; c++ {
				d := float64(dst.Pix[di+c]) / 255
				g := float64(glow.Pix[gi+c]) / 255 * ga
				dst.Pix[di+c] = clampByte(min((1-(1-d)*(1-g))*255, a))
			}
			di += 4
			gi += 4
		}
	}
}

// drawGrain overlays a fixed noise pattern keyed on pixel position.
func drawGrain(dst *image.RGBA, intensity float64) {
	b := dst.Bounds()
	strength := 0.12 * intensity
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := dst.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			if dst.Pix[i+3] != 0 {
				n := (hash01(x, y*7919+13) - 0.5) * 2 * strength
				for c := 0; c < 3; c++ {
					v := float64(dst.Pix[i+c])
					dst.Pix[i+c] = clampByte(min(v+n*255, float64(dst.Pix[i+3])))
				}
			}
			i += 4
		}
	}
}

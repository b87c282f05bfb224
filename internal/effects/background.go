// Package effects holds the layers that wrap scene content: the shared
// background, camera motion and the color-grade and overlay stack.
package effects

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/fogleman/gg"

	"github.com/ivlev/scenereel/internal/content"
)

// BackgroundStyle is the tag of a persistent backdrop.
type BackgroundStyle string

const (
	BackgroundSolid            BackgroundStyle = "solid"
	BackgroundGradient         BackgroundStyle = "gradient"
	BackgroundAnimatedGradient BackgroundStyle = "animated-gradient"
	BackgroundGrid             BackgroundStyle = "grid"
	BackgroundDots             BackgroundStyle = "dots"
	BackgroundWaves            BackgroundStyle = "waves"
	BackgroundParticles        BackgroundStyle = "particles"
	BackgroundStarfield        BackgroundStyle = "starfield"
)

var backgroundStyles = map[BackgroundStyle]bool{
	BackgroundSolid: true, BackgroundGradient: true, BackgroundAnimatedGradient: true,
	BackgroundGrid: true, BackgroundDots: true, BackgroundWaves: true,
	BackgroundParticles: true, BackgroundStarfield: true,
}

// ParseBackgroundStyle maps a tag to a style. Empty means gradient.
func ParseBackgroundStyle(s string) (BackgroundStyle, bool) {
	st := BackgroundStyle(strings.ToLower(strings.TrimSpace(s)))
	if st == "" {
		return BackgroundGradient, true
	}
	if backgroundStyles[st] {
		return st, true
	}
	return BackgroundSolid, false
}

var defaultPalette = []color.NRGBA{
	MustColor("#0f172a"),
	MustColor("#1e3a8a"),
	MustColor("#38bdf8"),
}

// Background renders the backdrop shared by every scene. It holds only
// parsed parameters; Draw is a pure function of the frame.
type Background struct {
	Style   BackgroundStyle
	Colors  []color.NRGBA
	Speed   float64
	Density int
}

// NewBackground parses b. Colors that fail to parse are skipped; ok is false
// when the style tag was unknown.
func NewBackground(b content.Background) (*Background, bool) {
	style, ok := ParseBackgroundStyle(b.Style)
	bg := &Background{Style: style, Speed: b.Speed, Density: b.Density}
	for _, s := range b.Colors {
		if c, err := ParseColor(s); err == nil {
			bg.Colors = append(bg.Colors, c)
		}
	}
	for i := len(bg.Colors); i < len(defaultPalette); i++ {
		bg.Colors = append(bg.Colors, defaultPalette[i])
	}
	if bg.Speed <= 0 {
		bg.Speed = 1
	}
	if bg.Density <= 0 {
		bg.Density = 60
	}
	return bg, ok
}

// Draw paints the backdrop for a global frame over the whole of dst.
func (b *Background) Draw(dst *image.RGBA, frame int) {
	dc := gg.NewContextForRGBA(dst)
	w, h := float64(dc.Width()), float64(dc.Height())
	t := float64(frame) * b.Speed
	base, mid, accent := b.Colors[0], b.Colors[1], b.Colors[2]

	switch b.Style {
	case BackgroundSolid:
		dc.SetColor(base)
		dc.Clear()
	case BackgroundAnimatedGradient:
		angle := t * 0.01
		cx, cy := w/2, h/2
		r := math.Hypot(w, h) / 2
		g := gg.NewLinearGradient(cx-math.Cos(angle)*r, cy-math.Sin(angle)*r, cx+math.Cos(angle)*r, cy+math.Sin(angle)*r)
		g.AddColorStop(0, base)
		g.AddColorStop(0.5+0.2*math.Sin(t*0.02), mid)
		g.AddColorStop(1, accent)
		dc.SetFillStyle(g)
		dc.DrawRectangle(0, 0, w, h)
		dc.Fill()
	case BackgroundGrid:
		b.fillGradient(dc, w, h)
		step := math.Max(w, h) / 16
		off := math.Mod(t*0.5, step)
		dc.SetColor(WithAlpha(accent, 0.12))
		dc.SetLineWidth(1)
		for x := -step + off; x < w+step; x += step {
			dc.DrawLine(x, 0, x, h)
		}
		for y := -step + off; y < h+step; y += step {
			dc.DrawLine(0, y, w, y)
		}
		dc.Stroke()
	case BackgroundDots:
		b.fillGradient(dc, w, h)
		step := math.Max(w, h) / 24
		for gy, y := 0, step/2; y < h; gy, y = gy+1, y+step {
			for gx, x := 0, step/2; x < w; gx, x = gx+1, x+step {
				pulse := 0.5 + 0.5*math.Sin(t*0.05+float64(gx+gy)*0.6)
				dc.SetColor(WithAlpha(accent, 0.08+0.17*pulse))
				dc.DrawCircle(x, y, step*0.06*(1+pulse))
				dc.Fill()
			}
		}
	case BackgroundWaves:
		b.fillGradient(dc, w, h)
		for i := 0; i < 4; i++ {
			fi := float64(i)
			amp := h * (0.03 + 0.01*fi)
			baseY := h * (0.55 + 0.1*fi)
			dc.MoveTo(0, h)
			for x := 0.0; x <= w; x += 8 {
				dc.LineTo(x, baseY+math.Sin(x/w*2*math.Pi*(1+fi*0.5)+t*0.03*(1+fi*0.3))*amp)
			}
			dc.LineTo(w, h)
			dc.ClosePath()
			dc.SetColor(WithAlpha(Mix(mid, accent, fi/3), 0.18))
			dc.Fill()
		}
	case BackgroundParticles:
		b.fillGradient(dc, w, h)
		for i := 0; i < b.Density; i++ {
			x := wrap(hash01(i, 1)*w+t*(hash01(i, 2)-0.5)*1.2, w)
			y := wrap(hash01(i, 3)*h-t*(0.2+hash01(i, 4)*0.8), h)
			r := 1 + hash01(i, 5)*math.Min(w, h)*0.006
			dc.SetColor(WithAlpha(accent, 0.25+0.35*hash01(i, 6)))
			dc.DrawCircle(x, y, r)
			dc.Fill()
		}
	case BackgroundStarfield:
		dc.SetColor(base)
		dc.Clear()
		white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		for i := 0; i < b.Density*3; i++ {
			x := hash01(i, 7) * w
			y := hash01(i, 8) * h
			twinkle := 0.5 + 0.5*math.Sin(t*(0.02+hash01(i, 9)*0.08)+hash01(i, 10)*2*math.Pi)
			dc.SetColor(WithAlpha(white, 0.2+0.8*twinkle))
			dc.DrawCircle(x, y, 0.5+hash01(i, 11)*1.5)
			dc.Fill()
		}
	default:
		b.fillGradient(dc, w, h)
	}
}

func (b *Background) fillGradient(dc *gg.Context, w, h float64) {
	g := gg.NewLinearGradient(0, 0, w, h)
	g.AddColorStop(0, b.Colors[0])
	g.AddColorStop(1, b.Colors[1])
	dc.SetFillStyle(g)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()
}

func wrap(v, m float64) float64 {
	return v - m*math.Floor(v/m)
}

// hash01 is a stateless pseudo-random value in [0,1) for (i, salt).
func hash01(i, salt int) float64 {
	x := uint64(i)*0x9E3779B97F4A7C15 + uint64(salt)*0xBF58476D1CE4E5B9
	x ^= x >> 30
	x *= 0xBF58476D1CE4E5B9
	x ^= x >> 27
	x *= 0x94D049BB133111EB
	x ^= x >> 31
	return float64(x>>11) / float64(1<<53)
}

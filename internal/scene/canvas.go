package scene

import (
	"image"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/ivlev/scenereel/internal/effects"
)

// FontKind selects one of the bundled Go fonts.
type FontKind int

const (
	Regular FontKind = iota
	Bold
	Mono
)

var (
	fontsOnce sync.Once
	fonts     [3]*opentype.Font
	fontsErr  error
)

func parsedFont(kind FontKind) (*opentype.Font, error) {
	fontsOnce.Do(func() {
		for i, data := range [][]byte{goregular.TTF, gobold.TTF, gomono.TTF} {
			f, err := opentype.Parse(data)
			if err != nil {
				fontsErr = err
				return
			}
			fonts[i] = f
		}
	})
	return fonts[kind], fontsErr
}

// baseSize is the reference frame dimension all pixel sizes are authored for.
const baseSize = 720.0

type faceKey struct {
	kind FontKind
	size float64
}

// Canvas wraps a gg context for one frame. Sizes given to its helpers are
// authored for a 720px short side and scaled to the real frame. Font faces
// are not safe for concurrent use, so every Canvas owns its own.
type Canvas struct {
	DC    *gg.Context
	W, H  float64
	Unit  float64
	faces map[faceKey]font.Face
}

// NewCanvas draws into dst.
func NewCanvas(dst *image.RGBA) *Canvas {
	dc := gg.NewContextForRGBA(dst)
	w, h := float64(dc.Width()), float64(dc.Height())
	return &Canvas{DC: dc, W: w, H: h, Unit: min(w, h) / baseSize, faces: make(map[faceKey]font.Face)}
}

// Px scales an authored size to frame pixels.
func (c *Canvas) Px(v float64) float64 {
	return v * c.Unit
}

// Font selects a face of authored size px.
func (c *Canvas) Font(kind FontKind, px float64) {
	key := faceKey{kind, c.Px(px)}
	face, ok := c.faces[key]
	if !ok {
		f, err := parsedFont(kind)
		if err != nil {
			return
		}
		face, err = opentype.NewFace(f, &opentype.FaceOptions{Size: key.size, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			return
		}
		c.faces[key] = face
	}
	c.DC.SetFontFace(face)
}

// Close releases the faces created for this frame.
func (c *Canvas) Close() {
	for _, f := range c.faces {
		f.Close()
	}
}

// Text draws s anchored at (x, y) with the given opacity.
func (c *Canvas) Text(s string, x, y, ax, ay float64, col color.NRGBA, alpha float64) {
	if alpha <= 0 || s == "" {
		return
	}
	c.DC.SetColor(effects.WithAlpha(col, alpha))
	c.DC.DrawStringAnchored(s, x, y, ax, ay)
}

// Wrapped draws s wrapped to width. It returns the height used.
func (c *Canvas) Wrapped(s string, x, y, ax, ay, width float64, align gg.Align, col color.NRGBA, alpha float64) float64 {
	if s == "" {
		return 0
	}
	lines := c.DC.WordWrap(s, width)
	h := float64(len(lines)) * c.DC.FontHeight() * lineSpacing
	if alpha > 0 {
		c.DC.SetColor(effects.WithAlpha(col, alpha))
		c.DC.DrawStringWrapped(s, x, y, ax, ay, width, lineSpacing, align)
	}
	return h
}

const lineSpacing = 1.3

// Panel fills a rounded rectangle.
func (c *Canvas) Panel(x, y, w, h, r float64, col color.NRGBA, alpha float64) {
	if alpha <= 0 {
		return
	}
	c.DC.SetColor(effects.WithAlpha(col, alpha))
	c.DC.DrawRoundedRectangle(x, y, w, h, r)
	c.DC.Fill()
}

// Scaled runs draw with the context scaled by s about (x, y).
func (c *Canvas) Scaled(s, x, y float64, draw func()) {
	c.DC.Push()
	c.DC.ScaleAbout(s, s, x, y)
	draw()
	c.DC.Pop()
}

// Shifted runs draw with the context translated by (dx, dy).
func (c *Canvas) Shifted(dx, dy float64, draw func()) {
	c.DC.Push()
	c.DC.Translate(dx, dy)
	draw()
	c.DC.Pop()
}

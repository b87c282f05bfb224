package transition

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/ivlev/scenereel/internal/renderer"
)

const (
	maxBlurSigma  = 12.0
	maxPixelBlock = 40
	zoomPeak      = 3.0
)

// NeedsBoth reports whether the variant composites the outgoing and the
// incoming scene together instead of overlaying the current one.
func (k Kind) NeedsBoth() bool {
	return k == WipeRadial
}

// Overlay draws a single-scene variant over dst in place.
func Overlay(dst *image.RGBA, st State) {
	if !st.Active() {
		return
	}
	i := st.Intensity
	switch st.Kind {
	case FadeBlack:
		fill(dst, color.NRGBA{A: alpha(i)})
	case FadeWhite:
		fill(dst, color.NRGBA{R: 255, G: 255, B: 255, A: alpha(i)})
	case Flash:
		fill(dst, color.NRGBA{R: 255, G: 250, B: 235, A: alpha(i)})
	case Blur:
		blurred := imaging.Blur(dst, maxBlurSigma*i)
		draw.Draw(dst, dst.Bounds(), blurred, image.Point{}, draw.Src)
	case Pixelate:
		pixelate(dst, 1+int(math.Round(maxPixelBlock*i)))
	case Glitch:
		glitch(dst, i, st.Local)
	case ZoomThrough:
		scale := renderer.Frames(st.Local, []int{0, st.Half, 2 * st.Half}, []float64{1, zoomPeak, 1},
			renderer.WithEasing(renderer.EaseInOutCubic))
		zoom(dst, scale)
		fill(dst, color.NRGBA{A: alpha(0.6 * i)})
	case WipeRadial:
		// Wipe needs both scenes; see Wipe.
	}
}

// Wipe reveals incoming inside a circle of growing radius over outgoing.
// reveal is the monotonic 0..1 span position.
func Wipe(dst, outgoing, incoming *image.RGBA, reveal float64) {
	b := dst.Bounds()
	if reveal >= 1 {
		draw.Draw(dst, b, incoming, b.Min, draw.Src)
		return
	}
	w, h := float64(b.Dx()), float64(b.Dy())
	r := renderer.EaseInOutCubic(renderer.Clamp01(reveal)) * (math.Hypot(w, h)/2 + 1)
	draw.Draw(dst, b, outgoing, b.Min, draw.Src)
	if r <= 0 {
		return
	}
	mask := gg.NewContext(b.Dx(), b.Dy())
	mask.DrawCircle(w/2, h/2, r)
	mask.SetColor(color.White)
	mask.Fill()
	draw.DrawMask(dst, b, incoming, b.Min, mask.Image(), image.Point{}, draw.Over)
}

func alpha(i float64) uint8 {
	return uint8(math.Round(255 * renderer.Clamp01(i)))
}

func fill(dst *image.RGBA, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Over)
}

func pixelate(dst *image.RGBA, block int) {
	if block <= 1 {
		return
	}
	b := dst.Bounds()
	sw, sh := max(1, b.Dx()/block), max(1, b.Dy()/block)
	small := imaging.Resize(dst, sw, sh, imaging.Box)
	big := imaging.Resize(small, b.Dx(), b.Dy(), imaging.NearestNeighbor)
	draw.Draw(dst, b, big, image.Point{}, draw.Src)
}

// glitch shifts the red and blue channels apart and displaces horizontal
// slices. The displacement is a pure function of local.
func glitch(dst *image.RGBA, intensity float64, local int) {
	b := dst.Bounds()
	src := imaging.Clone(dst)
	shift := int(math.Round(intensity * 0.02 * float64(b.Dx())))
	slices := 12
	sliceH := max(1, b.Dy()/slices)
	for y := 0; y < b.Dy(); y++ {
		s := y / sliceH
		off := 0
		if math.Sin(float64(s*37+local*13)) > 0.4 {
			off = int(math.Sin(float64(s*91+local*7)) * intensity * 0.08 * float64(b.Dx()))
		}
		for x := 0; x < b.Dx(); x++ {
			di := dst.PixOffset(b.Min.X+x, b.Min.Y+y)
			r := src.PixOffset(clampInt(x+off-shift, b.Dx()), y)
			g := src.PixOffset(clampInt(x+off, b.Dx()), y)
			bl := src.PixOffset(clampInt(x+off+shift, b.Dx()), y)
			dst.Pix[di+0] = src.Pix[r+0]
			dst.Pix[di+1] = src.Pix[g+1]
			dst.Pix[di+2] = src.Pix[bl+2]
			dst.Pix[di+3] = src.Pix[g+3]
		}
	}
}

func zoom(dst *image.RGBA, scale float64) {
	if scale == 1 {
		return
	}
	src := imaging.Clone(dst)
	dc := gg.NewContextForRGBA(dst)
	dc.SetColor(color.Black)
	dc.Clear()
	dc.ScaleAbout(scale, scale, float64(dc.Width())/2, float64(dc.Height())/2)
	dc.DrawImage(src, 0, 0)
}

func clampInt(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

package effects

import (
	"image"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/ivlev/scenereel/internal/content"
	"github.com/ivlev/scenereel/internal/renderer"
)

// CameraType is the tag of a camera motion variant.
type CameraType string

const (
	CameraStatic      CameraType = "static"
	CameraZoomInSlow  CameraType = "zoom-in-slow"
	CameraZoomInFast  CameraType = "zoom-in-fast"
	CameraZoomOutSlow CameraType = "zoom-out-slow"
	CameraZoomOutFast CameraType = "zoom-out-fast"
	CameraPanLeft     CameraType = "pan-left"
	CameraPanRight    CameraType = "pan-right"
	CameraTiltUp      CameraType = "tilt-up"
	CameraTiltDown    CameraType = "tilt-down"
	CameraKenBurns    CameraType = "ken-burns"
	CameraDrift       CameraType = "drift"
	CameraShake       CameraType = "shake"
	CameraDollyIn     CameraType = "dolly-in"
	CameraRackFocus   CameraType = "rack-focus"
)

var cameraTypes = map[CameraType]bool{
	CameraStatic: true, CameraZoomInSlow: true, CameraZoomInFast: true,
	CameraZoomOutSlow: true, CameraZoomOutFast: true, CameraPanLeft: true,
	CameraPanRight: true, CameraTiltUp: true, CameraTiltDown: true,
	CameraKenBurns: true, CameraDrift: true, CameraShake: true,
	CameraDollyIn: true, CameraRackFocus: true,
}

// ParseCameraType maps a tag to a variant. Empty means static; unknown tags
// return static with ok=false.
func ParseCameraType(s string) (CameraType, bool) {
	t := CameraType(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return CameraStatic, true
	}
	if cameraTypes[t] {
		return t, true
	}
	return CameraStatic, false
}

const (
	defaultStartScale = 1.0
	defaultEndScale   = 1.15
	shakeSettleFrames = 10
)

// Transform is the camera state of one frame. Translations are percent of
// the frame size; Origin is the focus point in percent.
type Transform struct {
	Scale      float64
	TranslateX float64
	TranslateY float64
	OriginX    float64
	OriginY    float64
	Blur       float64
}

// Identity is the transform of a static camera.
func Identity() Transform {
	return Transform{Scale: 1, OriginX: 50, OriginY: 50}
}

// IsIdentity reports whether drawing with t is a plain copy.
func (t Transform) IsIdentity() bool {
	return t.Scale == 1 && t.TranslateX == 0 && t.TranslateY == 0 && t.Blur == 0
}

// CameraAt evaluates camera c at a window-local frame. duration is the
// window length. A nil camera is static.
func CameraAt(c *content.Camera, local, duration int) Transform {
	tr := Identity()
	if c == nil {
		return tr
	}
	typ, _ := ParseCameraType(c.Type)
	if c.FocusPoint != nil {
		tr.OriginX = clampPercent(c.FocusPoint.X)
		tr.OriginY = clampPercent(c.FocusPoint.Y)
	}
	in := c.Intensity
	if in <= 0 {
		in = 1
	}
	s0, s1 := c.StartScale, c.EndScale
	if s0 <= 0 {
		s0 = defaultStartScale
	}
	if s1 <= 0 {
		s1 = defaultEndScale
	}
	d := max(duration, 1)
	f := float64(local)
	full := []float64{0, float64(d)}
	fast := []float64{0, float64(d) / 3}

	switch typ {
	case CameraZoomInSlow:
		tr.Scale = renderer.Interpolate(f, full, []float64{s0, s1 * in})
	case CameraZoomInFast:
		tr.Scale = renderer.Interpolate(f, fast, []float64{s0, s1 * in}, renderer.WithEasing(renderer.EaseOutCubic))
	case CameraZoomOutSlow:
		tr.Scale = renderer.Interpolate(f, full, []float64{s1 * in, s0})
	case CameraZoomOutFast:
		tr.Scale = renderer.Interpolate(f, fast, []float64{s1 * in, s0}, renderer.WithEasing(renderer.EaseOutCubic))
	case CameraPanLeft, CameraPanRight, CameraTiltUp, CameraTiltDown:
		// Panning needs headroom so the edges never show.
		tr.Scale = 1 + 0.1*in
		shift := renderer.Interpolate(f, full, []float64{-5 * in, 5 * in})
		switch typ {
		case CameraPanLeft:
			tr.TranslateX = shift
		case CameraPanRight:
			tr.TranslateX = -shift
		case CameraTiltUp:
			tr.TranslateY = shift
		case CameraTiltDown:
			tr.TranslateY = -shift
		}
	case CameraKenBurns:
		tr.Scale = renderer.Interpolate(f, full, []float64{s0, s0 + 0.08*in})
		tr.TranslateX = renderer.Interpolate(f, full, []float64{0, -2 * in})
		tr.TranslateY = renderer.Interpolate(f, full, []float64{0, -1 * in})
	case CameraDrift:
		phase := 2 * math.Pi * f / float64(d)
		tr.TranslateX = math.Sin(phase) * 1.5 * in
		tr.TranslateY = math.Cos(0.7*phase) * 1 * in
		tr.Scale = 1.02 + math.Sin(phase)*0.01*in
	case CameraShake:
		amp := renderer.Interpolate(f, []float64{0, shakeSettleFrames}, []float64{in, 0})
		tr.TranslateX = math.Sin(f*2.7) * amp
		tr.TranslateY = math.Sin(f*3.9+1) * amp
		tr.Scale = 1 + 0.02*amp
	case CameraDollyIn:
		tr.Scale = renderer.Interpolate(f, full, []float64{1, 1 + 0.25*in}, renderer.WithEasing(renderer.EaseInOutCubic))
	case CameraRackFocus:
		tr.Blur = renderer.Interpolate(f, []float64{0, 0.3 * float64(d)}, []float64{6 * in, 0}, renderer.WithEasing(renderer.EaseOutCubic))
		tr.Scale = renderer.Interpolate(f, full, []float64{1.03, 1})
	}
	return tr
}

// Apply draws layer onto dst through the transform. Scale and translation
// are taken about the focus point.
func (t Transform) Apply(dst *image.RGBA, layer image.Image) {
	if t.Blur > 0.05 {
		layer = imaging.Blur(layer, t.Blur)
	}
	dc := gg.NewContextForRGBA(dst)
	w, h := float64(dst.Bounds().Dx()), float64(dst.Bounds().Dy())
	ox, oy := t.OriginX*w/100, t.OriginY*h/100
	dc.Translate(t.TranslateX*w/100, t.TranslateY*h/100)
	if t.Scale != 1 && t.Scale > 0 {
		dc.ScaleAbout(t.Scale, t.Scale, ox, oy)
	}
	dc.DrawImage(layer, 0, 0)
}

func clampPercent(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

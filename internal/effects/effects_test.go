package effects

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ivlev/scenereel/internal/content"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
		err  bool
	}{
		{"#fff", color.NRGBA{255, 255, 255, 255}, false},
		{"#102030", color.NRGBA{0x10, 0x20, 0x30, 255}, false},
		{"10203080", color.NRGBA{0x10, 0x20, 0x30, 0x80}, false},
		{"#12", color.NRGBA{}, true},
		{"#zzzzzz", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestCameraZoomInSlow(t *testing.T) {
	c := &content.Camera{Type: "zoom-in-slow", Intensity: 1, StartScale: 1, EndScale: 1.2}
	assert.InDelta(t, 1.0, CameraAt(c, 0, 100).Scale, 1e-9)
	assert.InDelta(t, 1.1, CameraAt(c, 50, 100).Scale, 1e-9)
	assert.InDelta(t, 1.2, CameraAt(c, 100, 100).Scale, 1e-9)
	assert.InDelta(t, 1.2, CameraAt(c, 500, 100).Scale, 1e-9, "clamped after the window")
	assert.InDelta(t, 1.0, CameraAt(c, -3, 100).Scale, 1e-9)
}

func TestCameraDefaultsAndFocus(t *testing.T) {
	c := &content.Camera{Type: "zoom-in-slow", FocusPoint: &content.Point{X: 120, Y: 30}}
	tr := CameraAt(c, 90, 90)
	assert.InDelta(t, defaultEndScale, tr.Scale, 1e-9)
	assert.Equal(t, 100.0, tr.OriginX)
	assert.Equal(t, 30.0, tr.OriginY)

	assert.Equal(t, Identity(), CameraAt(nil, 10, 100))
	assert.True(t, CameraAt(&content.Camera{Type: "static"}, 10, 100).IsIdentity())
}

func TestCameraKenBurns(t *testing.T) {
	c := &content.Camera{Type: "ken-burns", Intensity: 1}
	end := CameraAt(c, 100, 100)
	assert.InDelta(t, 1.08, end.Scale, 1e-9)
	assert.InDelta(t, -2, end.TranslateX, 1e-9)
	assert.InDelta(t, -1, end.TranslateY, 1e-9)
}

func TestCameraDrift(t *testing.T) {
	c := &content.Camera{Type: "drift", Intensity: 2}
	tr := CameraAt(c, 25, 100)
	assert.InDelta(t, math.Sin(math.Pi/2)*1.5*2, tr.TranslateX, 1e-9)
	assert.InDelta(t, math.Cos(0.7*math.Pi/2)*2, tr.TranslateY, 1e-9)
}

func TestCameraShakeSettles(t *testing.T) {
	c := &content.Camera{Type: "shake", Intensity: 3}
	assert.False(t, CameraAt(c, 3, 100).IsIdentity())
	for f := shakeSettleFrames; f < 100; f++ {
		tr := CameraAt(c, f, 100)
		assert.Equal(t, 0.0, tr.TranslateX, "frame %d", f)
		assert.Equal(t, 0.0, tr.TranslateY, "frame %d", f)
	}
}

func TestCameraRackFocus(t *testing.T) {
	c := &content.Camera{Type: "rack-focus", Intensity: 1}
	assert.InDelta(t, 6, CameraAt(c, 0, 100).Blur, 1e-9)
	assert.Equal(t, 0.0, CameraAt(c, 30, 100).Blur)
}

func TestParseCameraType(t *testing.T) {
	typ, ok := ParseCameraType(" Pan-Left ")
	assert.True(t, ok)
	assert.Equal(t, CameraPanLeft, typ)
	typ, ok = ParseCameraType("barrel-roll")
	assert.False(t, ok)
	assert.Equal(t, CameraStatic, typ)
}

func TestCameraIsFinite(t *testing.T) {
	types := make([]string, 0, len(cameraTypes))
	for k := range cameraTypes {
		types = append(types, string(k))
	}
	rapid.Check(t, func(rt *rapid.T) {
		c := &content.Camera{
			Type:      rapid.SampledFrom(types).Draw(rt, "type"),
			Intensity: rapid.Float64Range(0, 5).Draw(rt, "intensity"),
		}
		d := rapid.IntRange(0, 600).Draw(rt, "duration")
		f := rapid.IntRange(-100, 1000).Draw(rt, "frame")
		tr := CameraAt(c, f, d)
		for _, v := range []float64{tr.Scale, tr.TranslateX, tr.TranslateY, tr.Blur} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				rt.Fatalf("non-finite transform %+v", tr)
			}
		}
		if tr.Scale <= 0 {
			rt.Fatalf("scale %v", tr.Scale)
		}
	})
}

func TestTransformApplyIdentityCopies(t *testing.T) {
	layer := image.NewRGBA(image.Rect(0, 0, 8, 8))
	layer.Set(3, 4, color.RGBA{255, 0, 0, 255})
	dst := image.NewRGBA(layer.Bounds())
	Identity().Apply(dst, layer)
	assert.Equal(t, layer.Pix, dst.Pix)
}

func TestBackgroundIsPureFunctionOfFrame(t *testing.T) {
	for style := range backgroundStyles {
		bg, ok := NewBackground(content.Background{Style: string(style)})
		require.True(t, ok)
		a := image.NewRGBA(image.Rect(0, 0, 64, 36))
		b := image.NewRGBA(image.Rect(0, 0, 64, 36))
		bg.Draw(a, 17)
		bg.Draw(image.NewRGBA(a.Bounds()), 3)
		bg.Draw(b, 17)
		assert.Equal(t, a.Pix, b.Pix, "style %s", style)
	}
}

func TestBackgroundUnknownStyle(t *testing.T) {
	bg, ok := NewBackground(content.Background{Style: "lava", Colors: []string{"#ff0000", "bogus"}})
	assert.False(t, ok)
	assert.Equal(t, BackgroundSolid, bg.Style)
	require.Len(t, bg.Colors, 3)
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	bg.Draw(dst, 0)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, dst.RGBAAt(2, 2))
}

func TestStackMonochrome(t *testing.T) {
	s, ok := NewStack(content.VisualStyle{ColorGrade: "monochrome"})
	require.True(t, ok)
	layer := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(layer.Pix); i += 4 {
		copy(layer.Pix[i:], []uint8{200, 40, 90, 255})
	}
	s.Apply(layer)
	c := layer.RGBAAt(1, 1)
	assert.Equal(t, c.R, c.G)
	assert.Equal(t, c.G, c.B)
}

func TestStackDisabledEffects(t *testing.T) {
	s, ok := NewStack(content.VisualStyle{
		Vignette: &content.Effect{Enabled: false, Intensity: 1},
		Grain:    &content.Effect{Enabled: true},
	})
	require.True(t, ok)
	assert.Equal(t, 0.0, s.Vignette)
	assert.Equal(t, 0.3, s.Grain)

	_, ok = NewStack(content.VisualStyle{ColorGrade: "sepia-dream"})
	assert.False(t, ok)
	assert.True(t, Stack{Grade: GradeNone}.Empty())
}

func TestVignetteDarkensCorners(t *testing.T) {
	s := Stack{Grade: GradeNone, Vignette: 1}
	layer := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for i := 0; i < len(layer.Pix); i += 4 {
		copy(layer.Pix[i:], []uint8{255, 255, 255, 255})
	}
	s.Apply(layer)
	assert.Equal(t, uint8(255), layer.RGBAAt(50, 50).R)
	assert.Less(t, layer.RGBAAt(0, 0).R, uint8(200))
}

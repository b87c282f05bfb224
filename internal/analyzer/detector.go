// Package analyzer picks a camera focus point from image content.
package analyzer

import (
	"image"

	"github.com/ivlev/scenereel/internal/content"
)

// Region is one cell of interest and its share of the image's edge energy.
type Region struct {
	Rect   image.Rectangle
	Energy float64 // 0.0-1.0
}

// Detector is the interface for image analysis strategies.
type Detector interface {
	Detect(img image.Image) ([]Region, error)
}

// FocusPoint is the energy-weighted centre of the regions d finds, in
// percent of the image. ok is false when nothing stands out.
func FocusPoint(d Detector, img image.Image) (content.Point, bool) {
	regions, err := d.Detect(img)
	if err != nil || len(regions) == 0 {
		return content.Point{X: 50, Y: 50}, false
	}
	b := img.Bounds()
	var sx, sy, total float64
	for _, r := range regions {
		c := r.Rect.Min.Add(r.Rect.Max).Div(2)
		sx += float64(c.X-b.Min.X) * r.Energy
		sy += float64(c.Y-b.Min.Y) * r.Energy
		total += r.Energy
	}
	if total == 0 {
		return content.Point{X: 50, Y: 50}, false
	}
	return content.Point{
		X: 100 * sx / total / float64(b.Dx()),
		Y: 100 * sy / total / float64(b.Dy()),
	}, true
}

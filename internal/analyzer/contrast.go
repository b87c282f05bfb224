package analyzer

import (
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"
)

// SaliencyDetector splits the image into a grid and ranks cells by Sobel
// gradient energy.
type SaliencyDetector struct {
	Cells         int     // grid cells per axis
	EdgeThreshold float64 // gradient magnitude below this is ignored
	MaxWidth      int     // analysis downscale bound
	MinShare      float64 // cells below this share of the total energy are noise
}

// NewSaliencyDetector creates a detector with default settings.
func NewSaliencyDetector() *SaliencyDetector {
	return &SaliencyDetector{
		Cells:         8,
		EdgeThreshold: 30.0,
		MaxWidth:      320,
		MinShare:      0.02,
	}
}

// Detect returns the strongest cells, highest energy first, in the
// coordinates of img.
func (d *SaliencyDetector) Detect(img image.Image) ([]Region, error) {
	b := img.Bounds()
	if b.Dx() < 3 || b.Dy() < 3 {
		return nil, nil
	}
	work := image.Image(img)
	if d.MaxWidth > 0 && b.Dx() > d.MaxWidth {
		work = imaging.Resize(img, d.MaxWidth, 0, imaging.Box)
	}
	gray := imaging.Grayscale(work)
	gw, gh := gray.Bounds().Dx(), gray.Bounds().Dy()

	cells := max(d.Cells, 1)
	energy := make([]float64, cells*cells)
	total := 0.0
	lum := func(x, y int) float64 {
		return float64(gray.Pix[gray.PixOffset(x, y)])
	}
	for y := 1; y < gh-1; y++ {
		for x := 1; x < gw-1; x++ {
			sumX := -lum(x-1, y-1) + lum(x+1, y-1) - 2*lum(x-1, y) + 2*lum(x+1, y) - lum(x-1, y+1) + lum(x+1, y+1)
			sumY := -lum(x-1, y-1) - 2*lum(x, y-1) - lum(x+1, y-1) + lum(x-1, y+1) + 2*lum(x, y+1) + lum(x+1, y+1)
			m := math.Sqrt(sumX*sumX + sumY*sumY)
			if m <= d.EdgeThreshold {
				continue
			}
			cx, cy := x*cells/gw, y*cells/gh
			energy[cy*cells+cx] += m
			total += m
		}
	}
	if total == 0 {
		return nil, nil
	}

	regions := make([]Region, 0, len(energy))
	for i, e := range energy {
		if e == 0 || e/total < d.MinShare {
			continue
		}
		cx, cy := i%cells, i/cells
		regions = append(regions, Region{
			Rect: image.Rect(
				b.Min.X+cx*b.Dx()/cells, b.Min.Y+cy*b.Dy()/cells,
				b.Min.X+(cx+1)*b.Dx()/cells, b.Min.Y+(cy+1)*b.Dy()/cells,
			),
			Energy: e / total,
		})
	}
	sort.SliceStable(regions, func(i, j int) bool { return regions[i].Energy > regions[j].Energy })
	return regions, nil
}

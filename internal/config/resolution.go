package config

import (
	"fmt"
	"math"
	"sort"
)

type size struct{ w, h int }

// 720p base per format.
var formatBases = map[Format]size{
	FormatLandscape: {1280, 720},
	FormatPortrait:  {720, 900},
	FormatSquare:    {720, 720},
	FormatStory:     {720, 1280},
}

var qualityScales = map[Quality]float64{
	QualitySD:  2.0 / 3.0,
	QualityHD:  1.0,
	QualityFHD: 1.5,
	Quality2K:  2.0,
	Quality4K:  3.0,
}

// ResolutionFor maps format x quality to an even-sized frame.
func ResolutionFor(f Format, q Quality) (int, int, error) {
	base, ok := formatBases[f]
	if !ok {
		return 0, 0, fmt.Errorf("unknown format %q", f)
	}
	scale, ok := qualityScales[q]
	if !ok {
		return 0, 0, fmt.Errorf("unknown quality %q", q)
	}
	return even(float64(base.w) * scale), even(float64(base.h) * scale), nil
}

// Encoders need even dimensions for yuv420p.
func even(v float64) int {
	n := int(math.Round(v))
	if n%2 != 0 {
		n++
	}
	return n
}

// ResolutionRow is one entry of the full table.
type ResolutionRow struct {
	Format  Format
	Quality Quality
	Width   int
	Height  int
}

// Resolutions lists every format x quality combination in a stable order.
func Resolutions() []ResolutionRow {
	formats := []Format{FormatLandscape, FormatPortrait, FormatSquare, FormatStory}
	qualities := make([]Quality, 0, len(qualityScales))
	for q := range qualityScales {
		qualities = append(qualities, q)
	}
	sort.Slice(qualities, func(i, j int) bool {
		return qualityScales[qualities[i]] < qualityScales[qualities[j]]
	})

	rows := make([]ResolutionRow, 0, len(formats)*len(qualities))
	for _, f := range formats {
		for _, q := range qualities {
			w, h, _ := ResolutionFor(f, q)
			rows = append(rows, ResolutionRow{Format: f, Quality: q, Width: w, Height: h})
		}
	}
	return rows
}

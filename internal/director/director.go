// Package director drafts explainer projects from slide decks. Every page
// becomes an image hero whose camera drifts toward the page's strongest
// region.
package director

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/ivlev/scenereel/internal/analyzer"
	"github.com/ivlev/scenereel/internal/config"
	"github.com/ivlev/scenereel/internal/content"
	"github.com/ivlev/scenereel/internal/effects"
	"github.com/ivlev/scenereel/internal/transition"
)

// ErrNoPages is returned when a deck has nothing to draft.
var ErrNoPages = errors.New("no pages to draft")

// Page is one rasterized slide and the asset reference that reloads it.
type Page struct {
	Ref   string
	Image image.Image
}

// Director generates explainer projects from pages.
type Director struct {
	Detector   analyzer.Detector
	MinDwell   float64 // seconds per page
	MaxDwell   float64
	MaxZoom    float64
	Transition transition.Kind
	Outro      string
}

// NewDirector creates a Director with default settings. A nil detector
// uses saliency detection.
func NewDirector(d analyzer.Detector) *Director {
	if d == nil {
		d = analyzer.NewSaliencyDetector()
	}
	return &Director{
		Detector:   d,
		MinDwell:   3.0,
		MaxDwell:   8.0,
		MaxZoom:    1.35,
		Transition: transition.FadeBlack,
		Outro:      "Thanks for watching",
	}
}

// Draft builds a project that shows pages in order over roughly
// totalDuration seconds. A non-positive total gives every page the
// image_hero default.
func (d *Director) Draft(title string, pages []Page, totalDuration float64) (*content.Project, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	dwell := d.dwellTime(totalDuration, len(pages))

	sections := make([]content.Section, 0, len(pages)+2)
	sections = append(sections, content.Section{
		ID:         "intro",
		Type:       content.SectionIntro,
		Headline:   title,
		Transition: &content.Transition{Type: string(d.Transition)},
	})
	for i, pg := range pages {
		if pg.Image == nil {
			return nil, fmt.Errorf("page %d: no image", i+1)
		}
		sections = append(sections, content.Section{
			ID:         fmt.Sprintf("page-%d", i+1),
			Type:       content.SectionImageHero,
			Image:      &content.Image{URL: pg.Ref, Position: "background", Fit: "contain"},
			Duration:   dwell,
			Camera:     d.camera(pg.Image),
			Transition: &content.Transition{Type: string(d.Transition)},
		})
	}
	sections = append(sections, content.Section{
		ID:       "outro",
		Type:     content.SectionOutro,
		Headline: d.Outro,
	})

	return &content.Project{
		Version:  "1.0",
		Kind:     content.KindExplainer,
		Title:    title,
		Sections: sections,
	}, nil
}

// dwellTime splits what is left after the intro and outro evenly across
// pages, clamped to [MinDwell, MaxDwell].
func (d *Director) dwellTime(totalDuration float64, pages int) float64 {
	if totalDuration <= 0 {
		v, _ := config.SectionDefaultSeconds(string(content.SectionImageHero))
		return v
	}
	intro, _ := config.SectionDefaultSeconds(string(content.SectionIntro))
	outro, _ := config.SectionDefaultSeconds(string(content.SectionOutro))
	available := totalDuration - intro - outro
	if available <= 0 {
		available = totalDuration
	}
	dwell := available / float64(pages)
	return math.Min(math.Max(dwell, d.MinDwell), d.MaxDwell)
}

// camera aims a slow zoom at the strongest region. Pages with no
// standout region get a ken-burns drift.
func (d *Director) camera(img image.Image) *content.Camera {
	regions, err := d.Detector.Detect(img)
	if err != nil || len(regions) == 0 {
		return &content.Camera{Type: string(effects.CameraKenBurns)}
	}
	top := SortRegions(regions)[0]
	for _, r := range regions {
		if r.Energy > top.Energy {
			top = r
		}
	}
	b := img.Bounds()
	c := top.Rect.Min.Add(top.Rect.Max).Div(2)
	return &content.Camera{
		Type:       string(effects.CameraZoomInSlow),
		StartScale: 1,
		EndScale:   d.zoom(top.Rect, b),
		FocusPoint: &content.Point{
			X: math.Round(1000*float64(c.X-b.Min.X)/float64(b.Dx())) / 10,
			Y: math.Round(1000*float64(c.Y-b.Min.Y)/float64(b.Dy())) / 10,
		},
	}
}

// zoom fits the region into 90% of the page, clamped to [1, MaxZoom].
func (d *Director) zoom(region, page image.Rectangle) float64 {
	const padding = 0.9
	if region.Dx() == 0 || region.Dy() == 0 {
		return 1
	}
	scale := math.Min(
		float64(page.Dx())*padding/float64(region.Dx()),
		float64(page.Dy())*padding/float64(region.Dy()),
	)
	scale = math.Min(math.Max(scale, 1), d.MaxZoom)
	return math.Round(scale*100) / 100
}

// SortRegions orders regions for reading: top to bottom, then left to
// right within a row.
func SortRegions(regions []analyzer.Region) []analyzer.Region {
	const rowThreshold = 20
	sorted := make([]analyzer.Region, len(regions))
	copy(sorted, regions)
	sort.SliceStable(sorted, func(i, j int) bool {
		dy := sorted[i].Rect.Min.Y - sorted[j].Rect.Min.Y
		if dy > rowThreshold || dy < -rowThreshold {
			return dy < 0
		}
		return sorted[i].Rect.Min.X < sorted[j].Rect.Min.X
	})
	return sorted
}

// Package source resolves image assets referenced by a project: local
// images, remote http(s) images and PDF pages.
package source

import (
	"errors"
	"image"
	"math"
	"sync"

	"github.com/gen2brain/go-fitz"
)

// ErrUnsupportedAsset is returned for references no loader understands.
var ErrUnsupportedAsset = errors.New("unsupported asset")

// MaxPageSide caps the longest side of a rasterized page in pixels.
const MaxPageSide = 4096

// Deck is a paged document that rasterizes one page at a time.
type Deck interface {
	Pages() int
	PageSize(index int) (widthPt, heightPt float64, err error)
	Render(index int, dpi int) (image.Image, error)
	Close() error
}

// PDFDeck renders PDF pages with MuPDF.
type PDFDeck struct {
	mu  sync.Mutex
	doc *fitz.Document
}

// OpenPDF opens a PDF for page rendering.
func OpenPDF(path string) (*PDFDeck, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &PDFDeck{doc: doc}, nil
}

func (d *PDFDeck) Pages() int {
	return d.doc.NumPage()
}

// PageSize is the page's bounding box in points.
func (d *PDFDeck) PageSize(index int) (float64, float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rect, err := d.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

// Render rasterizes one page, lowering dpi when the page would exceed
// MaxPageSide. A fitz document is not safe for concurrent use, so calls
// are serialized.
func (d *PDFDeck) Render(index int, dpi int) (image.Image, error) {
	if index < 0 || index >= d.doc.NumPage() {
		return nil, fitz.ErrPageMissing
	}
	if w, h, err := d.PageSize(index); err == nil {
		dpi = CappedDPI(w, h, dpi)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.ImageDPI(index, float64(dpi))
}

func (d *PDFDeck) Close() error {
	return d.doc.Close()
}

// CappedDPI returns the largest dpi no greater than dpi at which a page of
// the given point size fits MaxPageSide.
func CappedDPI(widthPt, heightPt float64, dpi int) int {
	long := math.Max(widthPt, heightPt)
	if long <= 0 || dpi <= 0 {
		return dpi
	}
	limit := int(math.Floor(MaxPageSide * 72 / long))
	return max(min(dpi, limit), 1)
}

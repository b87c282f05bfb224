package director

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ivlev/scenereel/internal/source"
)

// GenerateDraftPath creates a timestamped project filename in dir.
func GenerateDraftPath(dir, name string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("%s_%s.yaml", name, timestamp))
}

// LoadDeck rasterizes a PDF, or reads every image of a directory in name
// order. Page references are written relative to refBase so the drafted
// project resolves them from its own directory.
func LoadDeck(path string, dpi int, refBase string) ([]Page, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return loadImageDir(path, refBase)
	}
	if strings.ToLower(filepath.Ext(path)) == ".pdf" {
		return loadPDF(path, dpi, refBase)
	}
	if source.IsImagePath(path) {
		img, err := source.DecodeFile(path)
		if err != nil {
			return nil, err
		}
		return []Page{{Ref: relRef(path, refBase), Image: img}}, nil
	}
	return nil, fmt.Errorf("%w: %s", source.ErrUnsupportedAsset, path)
}

func loadPDF(path string, dpi int, refBase string) ([]Page, error) {
	doc, err := source.OpenPDF(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer doc.Close()

	ref := relRef(path, refBase)
	pages := make([]Page, 0, doc.Pages())
	for i := range doc.Pages() {
		img, err := doc.Render(i, dpi)
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", i+1, err)
		}
		pages = append(pages, Page{Ref: fmt.Sprintf("%s#page=%d", ref, i+1), Image: img})
	}
	return pages, nil
}

func loadImageDir(dir, refBase string) ([]Page, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && source.IsImagePath(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	pages := make([]Page, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		img, err := source.DecodeFile(path)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		pages = append(pages, Page{Ref: relRef(path, refBase), Image: img})
	}
	return pages, nil
}

func relRef(path, base string) string {
	if base == "" {
		return filepath.ToSlash(path)
	}
	absPath, err1 := filepath.Abs(path)
	absBase, err2 := filepath.Abs(base)
	if err1 != nil || err2 != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return filepath.ToSlash(absPath)
	}
	return filepath.ToSlash(rel)
}

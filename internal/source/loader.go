package source

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
)

// Loader resolves one asset reference to a decoded image.
type Loader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// maxRemoteBytes bounds a remote image download.
const maxRemoteBytes = 64 << 20

// FileLoader loads local image files, "doc.pdf#page=N" references and
// http(s) URLs. Relative paths resolve against BaseDir.
type FileLoader struct {
	BaseDir string
	DPI     int
	Client  *http.Client
}

// NewFileLoader returns a loader rooted at baseDir.
func NewFileLoader(baseDir string, dpi int) *FileLoader {
	return &FileLoader{BaseDir: baseDir, DPI: dpi, Client: http.DefaultClient}
}

// Ref is a parsed asset reference.
type Ref struct {
	Scheme string // file, http, https
	Path   string
	Page   int // zero-based, PDF only
}

// ParseRef splits ref into scheme, path and PDF page. Pages in the
// reference are one-based as in "deck.pdf#page=3".
func ParseRef(ref string) (Ref, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Ref{}, fmt.Errorf("%w: empty reference", ErrUnsupportedAsset)
	}
	if i := strings.Index(ref, "://"); i > 0 {
		scheme := strings.ToLower(ref[:i])
		switch scheme {
		case "http", "https":
			return Ref{Scheme: scheme, Path: ref}, nil
		case "file":
			ref = ref[i+3:]
		default:
			return Ref{}, fmt.Errorf("%w: scheme %q", ErrUnsupportedAsset, scheme)
		}
	}
	r := Ref{Scheme: "file", Path: ref}
	if path, frag, ok := strings.Cut(ref, "#"); ok {
		r.Path = path
		if v, found := strings.CutPrefix(frag, "page="); found {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return Ref{}, fmt.Errorf("%w: bad page %q", ErrUnsupportedAsset, v)
			}
			r.Page = n - 1
		}
	}
	return r, nil
}

// Load implements Loader. File and PDF loads do not observe ctx mid-read;
// the readiness gate bounds them with its own timeout.
func (l *FileLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	r, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}
	if r.Scheme != "file" {
		return l.fetch(ctx, r.Path)
	}
	path := r.Path
	if !filepath.IsAbs(path) && l.BaseDir != "" {
		path = filepath.Join(l.BaseDir, path)
	}
	switch {
	case strings.EqualFold(filepath.Ext(path), ".pdf"):
		return l.pdfPage(path, r.Page)
	case IsImagePath(path):
		return DecodeFile(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedAsset, ref)
}

func (l *FileLoader) pdfPage(path string, page int) (image.Image, error) {
	src, err := OpenPDF(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer src.Close()
	dpi := l.DPI
	if dpi <= 0 {
		dpi = 150
	}
	img, err := src.Render(page, dpi)
	if err != nil {
		return nil, fmt.Errorf("render %s page %d: %w", path, page+1, err)
	}
	return img, nil
}

func (l *FileLoader) fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %s", url, resp.Status)
	}
	return Decode(io.LimitReader(resp.Body, maxRemoteBytes))
}

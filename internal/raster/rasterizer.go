// Package raster turns uploaded documents into page images.
package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"ogarx/internal/domain"
)

// DefaultDPI is the resolution PDF pages are rendered at.
const DefaultDPI = 200

// Config controls PDF rendering.
type Config struct {
	Pdftoppm    string // binary name or absolute path; empty means "pdftoppm"
	DPI         int    // 0 means DefaultDPI
	MaxPages    int    // 0 = no limit
	MaxPixelDim int    // longer side is scaled down to this; 0 = keep size
	TempDir     string // parent for scratch directories; empty means os.TempDir
}

// Rasterizer decodes images directly and renders PDFs with poppler's
// pdftoppm.
type Rasterizer struct {
	cfg    Config
	runner Runner
}

// New creates a Rasterizer that shells out to pdftoppm.
func New(cfg Config) *Rasterizer {
	return NewWithRunner(cfg, execRunner{})
}

// NewWithRunner creates a Rasterizer with a custom command runner.
func NewWithRunner(cfg Config, runner Runner) *Rasterizer {
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = DefaultDPI
	}
	return &Rasterizer{cfg: cfg, runner: runner}
}

// Rasterize returns the pages of doc in order, numbered from 1. Images give
// exactly one page. On any failure no pages are returned and the error is a
// *domain.RasterizationError.
func (r *Rasterizer) Rasterize(ctx context.Context, doc domain.RawDocument) ([]domain.PageImage, error) {
	var (
		imgs []image.Image
		err  error
	)
	switch {
	case doc.MediaType.IsImage():
		var img image.Image
		img, err = decodeImage(doc.Content)
		imgs = []image.Image{img}
	case doc.MediaType == domain.MediaTypePDF:
		imgs, err = r.renderPDF(ctx, doc.Content)
	default:
		err = fmt.Errorf("%w: %q", domain.ErrUnsupportedFileType, doc.MediaType)
	}
	if err != nil {
		return nil, &domain.RasterizationError{Document: doc.Name, Err: err}
	}

	pages := make([]domain.PageImage, 0, len(imgs))
	for i, img := range imgs {
		pages = append(pages, domain.PageImage{
			DocumentName: doc.Name,
			Page:         i + 1,
			Image:        r.fit(img),
		})
	}
	return pages, nil
}

func decodeImage(content []byte) (image.Image, error) {
	if len(content) == 0 {
		return nil, errors.New("empty image")
	}
	img, err := imaging.Decode(bytes.NewReader(content), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

func (r *Rasterizer) renderPDF(ctx context.Context, content []byte) ([]image.Image, error) {
	if len(content) == 0 {
		return nil, errors.New("empty pdf")
	}
	if !hasPDFHeader(content) {
		return nil, errors.New("content is not a PDF")
	}

	dir, err := os.MkdirTemp(r.cfg.TempDir, "ogarx-raster-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	in := filepath.Join(dir, "in.pdf")
	if err := os.WriteFile(in, content, 0o600); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}

	// pdftoppm -r 200 -png <in.pdf> <dir/page>  ->  page-1.png, page-2.png, ...
	prefix := filepath.Join(dir, "page")
	args := []string{"-r", strconv.Itoa(r.cfg.DPI), "-png"}
	if r.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(r.cfg.MaxPages))
	}
	args = append(args, in, prefix)
	if _, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm, args...); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 500))
	}

	files, err := pageFiles(prefix)
	if err != nil {
		return nil, err
	}
	if r.cfg.MaxPages > 0 && len(files) > r.cfg.MaxPages {
		files = files[:r.cfg.MaxPages]
	}

	imgs := make([]image.Image, 0, len(files))
	for _, f := range files {
		img, err := imaging.Open(f)
		if err != nil {
			return nil, fmt.Errorf("reading rendered page %s: %w", filepath.Base(f), err)
		}
		imgs = append(imgs, img)
	}
	return imgs, nil
}

// hasPDFHeader reports whether the %PDF marker appears in the first 1024
// bytes, where readers accept it.
func hasPDFHeader(content []byte) bool {
	head := content
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(head, []byte("%PDF"))
}

// pageFiles lists prefix-N.png in page order. pdftoppm zero-pads N for
// longer documents, so the number is parsed rather than sorted as text.
func pageFiles(prefix string) ([]string, error) {
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("listing rendered pages: %w", err)
	}
	if len(matches) == 0 {
		return nil, errors.New("pdftoppm produced no pages")
	}

	type page struct {
		n    int
		path string
	}
	pages := make([]page, 0, len(matches))
	for _, m := range matches {
		num := strings.TrimSuffix(strings.TrimPrefix(m, prefix+"-"), ".png")
		n, err := strconv.Atoi(num)
		if err != nil {
			return nil, fmt.Errorf("unexpected page file %s", filepath.Base(m))
		}
		pages = append(pages, page{n: n, path: m})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].n < pages[j].n })

	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.path
	}
	return out, nil
}

func (r *Rasterizer) fit(img image.Image) image.Image {
	if r.cfg.MaxPixelDim <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= r.cfg.MaxPixelDim && b.Dy() <= r.cfg.MaxPixelDim {
		return img
	}
	return imaging.Fit(img, r.cfg.MaxPixelDim, r.cfg.MaxPixelDim, imaging.Lanczos)
}

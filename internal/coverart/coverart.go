// Package coverart turns an article lead image into the JPEG shown on the
// cover page of the cover variant.
package coverart

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxWidth    = 600
	DefaultJPEGQuality = 90
	defaultMaxPixels   = 50 * 1000 * 1000
	minDimension       = 100
)

var (
	ErrTooLarge = errors.New("image too large to decode")
	ErrTooSmall = errors.New("image too small for a cover")
)

// Optimizer prepares cover images.
type Optimizer struct {
	MaxWidth    int
	JPEGQuality int
	MaxPixels   int // total pixel count limit for decode (width * height)
}

// NewOptimizer creates an optimizer, applying defaults for non-positive values.
func NewOptimizer(maxWidth, quality int) *Optimizer {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}
	if quality > 100 {
		quality = 100
	}
	return &Optimizer{
		MaxWidth:    maxWidth,
		JPEGQuality: quality,
		MaxPixels:   defaultMaxPixels,
	}
}

// Prepare decodes input (JPEG, PNG, GIF or WebP), flattens transparency onto
// white, scales it down to MaxWidth and re-encodes it as JPEG.
func (o *Optimizer) Prepare(input []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}
	pixels := uint64(cfg.Width) * uint64(cfg.Height)
	if o.MaxPixels > 0 && pixels > uint64(o.MaxPixels) {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}
	if cfg.Width < minDimension || cfg.Height < minDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooSmall, cfg.Width, cfg.Height)
	}

	src, err := imaging.Decode(bytes.NewReader(input), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	// JPEG has no alpha channel
	bounds := src.Bounds()
	flat := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	flat = imaging.Overlay(flat, src, image.Pt(0, 0), 1.0)

	var processed image.Image = flat
	if o.MaxWidth > 0 && flat.Bounds().Dx() > o.MaxWidth {
		processed = imaging.Resize(flat, o.MaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, processed, imaging.JPEG, imaging.JPEGQuality(o.JPEGQuality)); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}
	return buf.Bytes(), nil
}

package imageprep

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

const (
	// DefaultMaxDimension bounds the longest side of a normalized source image.
	DefaultMaxDimension = 1536
	// DefaultThumbnailDimension bounds the longest side of an enrichment thumbnail.
	DefaultThumbnailDimension = 512

	normalizeQuality = 88
	thumbnailQuality = 70
)

// ErrEmptyImage is returned for zero-length payloads.
var ErrEmptyImage = errors.New("image payload is empty")

// Preparer decodes, downsizes and re-encodes images as JPEG.
type Preparer struct {
	maxDimension   int
	thumbDimension int
}

// Option configures the preparer.
type Option func(*Preparer)

// WithMaxDimension overrides the normalized size bound.
func WithMaxDimension(px int) Option {
	return func(p *Preparer) {
		if px > 0 {
			p.maxDimension = px
		}
	}
}

// WithThumbnailDimension overrides the thumbnail size bound.
func WithThumbnailDimension(px int) Option {
	return func(p *Preparer) {
		if px > 0 {
			p.thumbDimension = px
		}
	}
}

// New returns a preparer with default bounds.
func New(opts ...Option) *Preparer {
	p := &Preparer{maxDimension: DefaultMaxDimension, thumbDimension: DefaultThumbnailDimension}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Normalize applies EXIF orientation, fits the image within the max dimension and encodes JPEG.
func (p *Preparer) Normalize(data []byte) ([]byte, error) {
	return p.reencode(data, p.maxDimension, normalizeQuality)
}

// Thumbnail produces a small JPEG for description requests.
func (p *Preparer) Thumbnail(data []byte) ([]byte, error) {
	return p.reencode(data, p.thumbDimension, thumbnailQuality)
}

func (p *Preparer) reencode(data []byte, maxDim, quality int) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	img = fit(img, maxDim)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func fit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxDim && b.Dy() <= maxDim {
		return img
	}
	return imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
}

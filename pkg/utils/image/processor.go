package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"
)

const (
	MaxImageSize   = 10 * 1024 * 1024 // 10MB
	DefaultMaxEdge = 1600
	DefaultQuality = 85

	ContentType = "image/webp"
	Extension   = ".webp"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

var AllowedFormats = map[string]bool{
	"jpeg": true,
	"png":  true,
	"webp": true,
}

type Options struct {
	MaxEdge int
	Quality int
}

// Result is an encoded webp image ready for upload.
type Result struct {
	Body   *bytes.Buffer
	Width  int
	Height int
}

// Process decodes a jpeg, png or webp image, shrinks it so the longest edge
// fits MaxEdge and re-encodes it as lossy webp.
func Process(src io.Reader, opts Options) (*Result, error) {
	if opts.MaxEdge <= 0 {
		opts.MaxEdge = DefaultMaxEdge
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = DefaultQuality
	}

	img, format, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("could not decode image: %w", err)
	}
	if !AllowedFormats[format] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	img = Resize(img, opts.MaxEdge)

	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Lossless: false, Quality: float32(opts.Quality)}); err != nil {
		return nil, fmt.Errorf("could not encode image: %w", err)
	}

	b := img.Bounds()
	return &Result{Body: buf, Width: b.Dx(), Height: b.Dy()}, nil
}

// Resize scales img down so neither side exceeds maxEdge. Smaller images are
// returned unchanged.
func Resize(img image.Image, maxEdge int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxEdge && h <= maxEdge {
		return img
	}

	var nw, nh int
	if w >= h {
		nw = maxEdge
		nh = max(1, h*maxEdge/w)
	} else {
		nh = maxEdge
		nw = max(1, w*maxEdge/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

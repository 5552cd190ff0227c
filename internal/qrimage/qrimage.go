// Package qrimage encodes URL strings into scannable QR images.
package qrimage

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Encoder turns a URL string into an embeddable image representation.
// Implementations should be safe for concurrent use.
type Encoder interface {
	Encode(url string) (string, error)
}

const defaultSize = 256

type pngEncoder struct {
	size int
}

type Option func(*pngEncoder)

// WithSize sets the rendered image size in pixels. Defaults to 256.
func WithSize(px int) Option {
	return func(e *pngEncoder) {
		if px > 0 {
			e.size = px
		}
	}
}

// NewPNG returns an Encoder that renders a PNG QR code and wraps it
// in a data URI suitable for an <img> src attribute.
func NewPNG(opts ...Option) Encoder {
	e := &pngEncoder{size: defaultSize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *pngEncoder) Encode(url string) (string, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, e.size)
	if err != nil {
		return "", fmt.Errorf("qr encode %q: %w", url, err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

package qrcode

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sundayezeilo/qrcodes/internal/qrimage"
)

// ImageGenerator renders the scannable image for a record. The base
// application URL is fixed at construction time (set once at startup from
// config) rather than read from the environment per call.
type ImageGenerator struct {
	baseURL string
	encoder qrimage.Encoder
}

// NewImageGenerator creates an ImageGenerator. A nil encoder defaults to
// the PNG data-URI encoder.
func NewImageGenerator(baseURL string, encoder qrimage.Encoder) *ImageGenerator {
	if encoder == nil {
		encoder = qrimage.NewPNG()
	}
	return &ImageGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		encoder: encoder,
	}
}

// ScanURL returns the absolute scan-endpoint URL encoded into the image.
func (g *ImageGenerator) ScanURL(id uuid.UUID) string {
	return fmt.Sprintf("%s/qrcodes/%s/scan", g.baseURL, id)
}

// DataURL encodes the record's scan endpoint into an embeddable image.
func (g *ImageGenerator) DataURL(id uuid.UUID) (string, error) {
	return g.encoder.Encode(g.ScanURL(id))
}

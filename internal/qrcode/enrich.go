package qrcode

import (
	"context"

	"github.com/sundayezeilo/qrcodes/internal/errx"
	"github.com/sundayezeilo/qrcodes/internal/shopify"
)

// Enricher joins stored records with live product data. Image encoding and
// the remote product query for one record run concurrently; enrichment of
// distinct records is parallelized by the caller (service.List).
type Enricher struct {
	products shopify.ProductFetcher
	images   *ImageGenerator
}

// NewEnricher creates an Enricher.
func NewEnricher(products shopify.ProductFetcher, images *ImageGenerator) *Enricher {
	return &Enricher{
		products: products,
		images:   images,
	}
}

type imageResult struct {
	dataURL string
	err     error
}

// Enrich produces the Enriched projection of one record.
//
// A failed product query or image encoding is fatal for this record only
// and comes back as errx.Unavailable; it is never reported as a deleted
// product. A variant GID that fails the reference pattern surfaces as
// errx.Malformed from the destination resolver.
func (e *Enricher) Enrich(ctx context.Context, qr QRCode) (Enriched, error) {
	const op = "qrcode.enricher.Enrich"

	// Kick off image encoding so it overlaps the remote product query.
	// The channel is buffered: early returns below must not leak the goroutine.
	imageCh := make(chan imageResult, 1)
	go func() {
		dataURL, err := e.images.DataURL(qr.ID)
		imageCh <- imageResult{dataURL: dataURL, err: err}
	}()

	product, err := e.products.Product(ctx, qr.ProductID)
	if err != nil {
		return Enriched{}, errx.E(op, errx.Unavailable, err)
	}

	enriched := Enriched{QRCode: qr}
	if product == nil || product.Title == "" {
		enriched.ProductDeleted = true
	} else {
		enriched.ProductTitle = &product.Title
		if len(product.Images) > 0 {
			first := product.Images[0]
			enriched.ProductImage = &first.URL
			enriched.ProductAlt = &first.AltText
		}
	}

	destinationURL, err := DestinationURL(qr)
	if err != nil {
		return Enriched{}, err
	}
	enriched.DestinationURL = destinationURL

	img := <-imageCh
	if img.err != nil {
		return Enriched{}, errx.E(op, errx.Unavailable, img.err)
	}
	enriched.Image = img.dataURL

	return enriched, nil
}

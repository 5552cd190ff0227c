package qrcode

import (
	"time"

	"github.com/google/uuid"
)

// Destination is the redirect target category a scan leads to.
type Destination string

const (
	// DestinationProduct redirects to the product page.
	DestinationProduct Destination = "product"
	// DestinationCart redirects to a cart pre-filled with one unit of the variant.
	DestinationCart Destination = "cart"
)

// QRCode is the persisted record. Shop and ID are immutable after creation;
// Scans is incremented by the scan endpoint.
type QRCode struct {
	ID               uuid.UUID
	Shop             string
	Title            string
	ProductID        string
	ProductHandle    string
	ProductVariantID string
	Destination      Destination
	Scans            int64
	CreatedAt        time.Time
}

// Enriched is a QRCode joined with live product data and derived artifacts.
// It is a pure projection computed on every read and is never persisted;
// none of the derived fields are written back to the store.
type Enriched struct {
	QRCode

	// ProductDeleted is true when the product lookup returned no title.
	ProductDeleted bool
	// ProductTitle, ProductImage and ProductAlt come from the live product
	// lookup and are nil when the product is deleted or has no image.
	ProductTitle *string
	ProductImage *string
	ProductAlt   *string
	// DestinationURL is recomputed on every read since it depends on
	// mutable remote state (shop domain, variant existence).
	DestinationURL string
	// Image is a data-URI-encoded QR image for the record's scan endpoint.
	Image string
}

package qrcode

import (
	"fmt"
	"regexp"

	"github.com/sundayezeilo/qrcodes/internal/errx"
)

// variantIDPattern matches Admin API product variant GIDs and captures the
// trailing numeric id.
var variantIDPattern = regexp.MustCompile(`gid://shopify/ProductVariant/([0-9]+)`)

// DestinationURL computes the canonical redirect URL for a record. It is
// pure and deterministic. For cart destinations the variant GID must match
// the expected reference pattern; a mismatch means the stored record is
// corrupted and yields an errx.Malformed error that callers must propagate.
func DestinationURL(qr QRCode) (string, error) {
	if qr.Destination == DestinationProduct {
		return fmt.Sprintf("https://%s/products/%s", qr.Shop, qr.ProductHandle), nil
	}

	match := variantIDPattern.FindStringSubmatch(qr.ProductVariantID)
	if match == nil {
		return "", errx.E("qrcode.DestinationURL", errx.Malformed,
			fmt.Errorf("unrecognized product variant id %q", qr.ProductVariantID))
	}

	return fmt.Sprintf("https://%s/cart/%s:1", qr.Shop, match[1]), nil
}

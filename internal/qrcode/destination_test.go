package qrcode

import (
	"testing"

	"github.com/sundayezeilo/qrcodes/internal/errx"
)

func TestDestinationURL_Product(t *testing.T) {
	qr := QRCode{
		Shop:          "s.myshopify.com",
		ProductHandle: "promo-item",
		Destination:   DestinationProduct,
	}

	got, err := DestinationURL(qr)
	if err != nil {
		t.Fatalf("DestinationURL() failed: %v", err)
	}
	if want := "https://s.myshopify.com/products/promo-item"; got != want {
		t.Errorf("DestinationURL() = %q, want %q", got, want)
	}
}

func TestDestinationURL_Cart(t *testing.T) {
	tests := []struct {
		name      string
		variantID string
		want      string
	}{
		{
			name:      "plain variant gid",
			variantID: "gid://shopify/ProductVariant/42",
			want:      "https://s.myshopify.com/cart/42:1",
		},
		{
			name:      "long numeric id",
			variantID: "gid://shopify/ProductVariant/4066111832653",
			want:      "https://s.myshopify.com/cart/4066111832653:1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qr := QRCode{
				Shop:             "s.myshopify.com",
				ProductVariantID: tt.variantID,
				Destination:      DestinationCart,
			}

			got, err := DestinationURL(qr)
			if err != nil {
				t.Fatalf("DestinationURL() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("DestinationURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDestinationURL_MalformedVariantID(t *testing.T) {
	tests := []struct {
		name      string
		variantID string
	}{
		{"empty", ""},
		{"wrong resource", "gid://shopify/Product/42"},
		{"no numeric suffix", "gid://shopify/ProductVariant/"},
		{"bare number", "42"},
		{"garbage", "not-a-gid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qr := QRCode{
				Shop:             "s.myshopify.com",
				ProductVariantID: tt.variantID,
				Destination:      DestinationCart,
			}

			_, err := DestinationURL(qr)
			if err == nil {
				t.Fatal("expected error for malformed variant id, got nil")
			}
			if kind := errx.KindOf(err); kind != errx.Malformed {
				t.Errorf("error kind = %v, want Malformed", kind)
			}
		})
	}
}

func TestDestinationURL_ProductIgnoresVariantID(t *testing.T) {
	// A product destination never consults the variant reference, so a
	// stale or broken variant id must not fail the resolver.
	qr := QRCode{
		Shop:             "s.myshopify.com",
		ProductHandle:    "promo-item",
		ProductVariantID: "garbage",
		Destination:      DestinationProduct,
	}

	got, err := DestinationURL(qr)
	if err != nil {
		t.Fatalf("DestinationURL() failed: %v", err)
	}
	if want := "https://s.myshopify.com/products/promo-item"; got != want {
		t.Errorf("DestinationURL() = %q, want %q", got, want)
	}
}

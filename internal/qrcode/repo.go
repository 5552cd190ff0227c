package qrcode

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence operations for QRCode records.
// The store applies filters and ordering server-side; List and Count share
// the same shop + title-contains predicate.
type Repository interface {
	Create(ctx context.Context, qr QRCode) (QRCode, error)
	GetByID(ctx context.Context, id uuid.UUID) (QRCode, error)
	List(ctx context.Context, shop string, offset, limit int, query string) ([]QRCode, error)
	Count(ctx context.Context, shop, query string) (int64, error)
	Update(ctx context.Context, qr QRCode) (QRCode, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementScans(ctx context.Context, id uuid.UUID) (QRCode, error)
}

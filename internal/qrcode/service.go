package qrcode

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sundayezeilo/qrcodes/internal/errx"
)

// Service defines the business logic operations for QR code records.
// Read operations return records enriched with live product data.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (Enriched, error)
	List(ctx context.Context, shop string, offset, limit int, query string) ([]Enriched, error)
	Count(ctx context.Context, shop, query string) (int64, error)
	Create(ctx context.Context, shop string, p Payload) (QRCode, map[string]string, error)
	Update(ctx context.Context, id uuid.UUID, p Payload) (QRCode, map[string]string, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Scan(ctx context.Context, id uuid.UUID) (string, error)
}

type service struct {
	repo     Repository
	enricher *Enricher
}

// NewService creates a new service instance.
func NewService(repo Repository, enricher *Enricher) Service {
	return &service{
		repo:     repo,
		enricher: enricher,
	}
}

// Get returns one enriched record. A missing id comes back as errx.NotFound.
func (s *service) Get(ctx context.Context, id uuid.UUID) (Enriched, error) {
	const op = "qrcode.service.Get"

	qr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Enriched{}, errx.E(op, errx.KindOf(err), err)
	}

	enriched, err := s.enricher.Enrich(ctx, qr)
	if err != nil {
		return Enriched{}, errx.E(op, errx.KindOf(err), err)
	}
	return enriched, nil
}

// List returns a page of enriched records matching the shop and title
// filter, newest first. Records are enriched concurrently but returned in
// the store's order: each goroutine writes into its original position of a
// pre-sized slice, and the call resolves only after every enrichment has
// completed. A plain errgroup (no derived context) keeps one record's
// failure from cancelling its siblings; the first failure is surfaced
// after all of them finish.
func (s *service) List(ctx context.Context, shop string, offset, limit int, query string) ([]Enriched, error) {
	const op = "qrcode.service.List"

	if offset < 0 || limit < 0 {
		return nil, errx.E(op, errx.Invalid, errors.New("offset and limit must be non-negative"))
	}

	records, err := s.repo.List(ctx, shop, offset, limit, query)
	if err != nil {
		return nil, errx.E(op, errx.KindOf(err), err)
	}

	// Zero matches: return immediately, no remote lookups.
	if len(records) == 0 {
		return []Enriched{}, nil
	}

	enriched := make([]Enriched, len(records))
	var g errgroup.Group
	for i, qr := range records {
		g.Go(func() error {
			e, err := s.enricher.Enrich(ctx, qr)
			if err != nil {
				return fmt.Errorf("record %s: %w", qr.ID, err)
			}
			enriched[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errx.E(op, errx.KindOf(err), err)
	}

	return enriched, nil
}

// Count returns the total number of records matching the same predicate as
// List, independent of paging.
func (s *service) Count(ctx context.Context, shop, query string) (int64, error) {
	const op = "qrcode.service.Count"

	count, err := s.repo.Count(ctx, shop, query)
	if err != nil {
		return 0, errx.E(op, errx.KindOf(err), err)
	}
	return count, nil
}

// Create validates and persists a new record. Validation failures are
// ordinary values (a field-to-message map), not errors.
func (s *service) Create(ctx context.Context, shop string, p Payload) (QRCode, map[string]string, error) {
	const op = "qrcode.service.Create"

	if fieldErrors := Validate(p); fieldErrors != nil {
		return QRCode{}, fieldErrors, nil
	}

	created, err := s.repo.Create(ctx, QRCode{
		Shop:             shop,
		Title:            p.Title,
		ProductID:        p.ProductID,
		ProductHandle:    p.ProductHandle,
		ProductVariantID: p.ProductVariantID,
		Destination:      Destination(p.Destination),
	})
	if err != nil {
		return QRCode{}, nil, errx.E(op, errx.KindOf(err), err)
	}
	return created, nil, nil
}

// Update validates the payload and rewrites the editable fields of an
// existing record.
func (s *service) Update(ctx context.Context, id uuid.UUID, p Payload) (QRCode, map[string]string, error) {
	const op = "qrcode.service.Update"

	if fieldErrors := Validate(p); fieldErrors != nil {
		return QRCode{}, fieldErrors, nil
	}

	updated, err := s.repo.Update(ctx, QRCode{
		ID:               id,
		Title:            p.Title,
		ProductID:        p.ProductID,
		ProductHandle:    p.ProductHandle,
		ProductVariantID: p.ProductVariantID,
		Destination:      Destination(p.Destination),
	})
	if err != nil {
		return QRCode{}, nil, errx.E(op, errx.KindOf(err), err)
	}
	return updated, nil, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "qrcode.service.Delete"

	if err := s.repo.Delete(ctx, id); err != nil {
		return errx.E(op, errx.KindOf(err), err)
	}
	return nil
}

// Scan records a scan hit and returns the destination URL to redirect to.
func (s *service) Scan(ctx context.Context, id uuid.UUID) (string, error) {
	const op = "qrcode.service.Scan"

	qr, err := s.repo.IncrementScans(ctx, id)
	if err != nil {
		return "", errx.E(op, errx.KindOf(err), err)
	}

	destinationURL, err := DestinationURL(qr)
	if err != nil {
		return "", errx.E(op, errx.KindOf(err), err)
	}
	return destinationURL, nil
}

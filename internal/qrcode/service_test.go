package qrcode

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sundayezeilo/qrcodes/internal/errx"
	"github.com/sundayezeilo/qrcodes/internal/shopify"
)

/***************
 * Mocks
 ***************/

// mockRepository implements Repository for testing.
type mockRepository struct {
	createFunc         func(ctx context.Context, qr QRCode) (QRCode, error)
	getByIDFunc        func(ctx context.Context, id uuid.UUID) (QRCode, error)
	listFunc           func(ctx context.Context, shop string, offset, limit int, query string) ([]QRCode, error)
	countFunc          func(ctx context.Context, shop, query string) (int64, error)
	updateFunc         func(ctx context.Context, qr QRCode) (QRCode, error)
	deleteFunc         func(ctx context.Context, id uuid.UUID) error
	incrementScansFunc func(ctx context.Context, id uuid.UUID) (QRCode, error)
}

func (m *mockRepository) Create(ctx context.Context, qr QRCode) (QRCode, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, qr)
	}
	qr.ID = uuid.New()
	qr.CreatedAt = time.Now()
	return qr, nil
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (QRCode, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return QRCode{}, errx.E("qrcode.repo.GetByID", errx.NotFound, errors.New("not found"))
}

func (m *mockRepository) List(ctx context.Context, shop string, offset, limit int, query string) ([]QRCode, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, shop, offset, limit, query)
	}
	return []QRCode{}, nil
}

func (m *mockRepository) Count(ctx context.Context, shop, query string) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, shop, query)
	}
	return 0, nil
}

func (m *mockRepository) Update(ctx context.Context, qr QRCode) (QRCode, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, qr)
	}
	return qr, nil
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockRepository) IncrementScans(ctx context.Context, id uuid.UUID) (QRCode, error) {
	if m.incrementScansFunc != nil {
		return m.incrementScansFunc(ctx, id)
	}
	return QRCode{}, errx.E("qrcode.repo.IncrementScans", errx.NotFound, errors.New("not found"))
}

func storedRecord(n byte, title string) QRCode {
	return QRCode{
		ID:            uuid.UUID{0x01, 0x91, 0xd1, 0xa0, 0, 0, 0x70, 0, 0x80, 0, 0, 0, 0, 0, 0, n},
		Shop:          "s.myshopify.com",
		Title:         title,
		ProductID:     "gid://shopify/Product/" + string('0'+n),
		ProductHandle: strings.ToLower(title),
		Destination:   DestinationProduct,
	}
}

/***************
 * List
 ***************/

func TestService_List_EmptyPageSkipsEnrichment(t *testing.T) {
	repo := &mockRepository{
		listFunc: func(ctx context.Context, shop string, offset, limit int, query string) ([]QRCode, error) {
			return []QRCode{}, nil
		},
	}
	fetcher := &mockFetcher{}
	svc := NewService(repo, newTestEnricher(fetcher, nil))

	got, err := svc.List(context.Background(), "s.myshopify.com", 0, 0, "")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}

	if got == nil {
		t.Fatal("List() = nil, want empty slice")
	}
	if len(got) != 0 {
		t.Errorf("List() returned %d records, want 0", len(got))
	}
	if fetcher.calls != 0 {
		t.Errorf("expected no remote product queries, got %d", fetcher.calls)
	}
}

func TestService_List_PreservesStoreOrder(t *testing.T) {
	first := storedRecord(2, "First")
	second := storedRecord(1, "Second")

	repo := &mockRepository{
		listFunc: func(ctx context.Context, shop string, offset, limit int, query string) ([]QRCode, error) {
			return []QRCode{first, second}, nil
		},
	}

	// Hold the first record's product response until the second has
	// resolved, forcing out-of-order completion.
	secondDone := make(chan struct{})
	fetcher := &mockFetcher{
		productFunc: func(ctx context.Context, id string) (*shopify.Product, error) {
			if id == first.ProductID {
				<-secondDone
				return &shopify.Product{Title: "First Product"}, nil
			}
			defer close(secondDone)
			return &shopify.Product{Title: "Second Product"}, nil
		},
	}

	svc := NewService(repo, newTestEnricher(fetcher, nil))

	got, err := svc.List(context.Background(), "s.myshopify.com", 0, 5, "")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("List() returned %d records, want 2", len(got))
	}
	if got[0].ID != first.ID || got[1].ID != second.ID {
		t.Errorf("List() order = [%s, %s], want [%s, %s]",
			got[0].ID, got[1].ID, first.ID, second.ID)
	}
	if got[0].ProductTitle == nil || *got[0].ProductTitle != "First Product" {
		t.Errorf("got[0].ProductTitle = %v, want 'First Product'", got[0].ProductTitle)
	}
}

func TestService_List_OneFailureDoesNotAbortSiblings(t *testing.T) {
	repo := &mockRepository{
		listFunc: func(ctx context.Context, shop string, offset, limit int, query string) ([]QRCode, error) {
			return []QRCode{storedRecord(1, "A"), storedRecord(2, "B"), storedRecord(3, "C")}, nil
		},
	}

	failing := storedRecord(2, "B").ProductID
	fetcher := &mockFetcher{
		productFunc: func(ctx context.Context, id string) (*shopify.Product, error) {
			if id == failing {
				return nil, errors.New("connection reset")
			}
			return &shopify.Product{Title: "OK"}, nil
		},
	}

	svc := NewService(repo, newTestEnricher(fetcher, nil))

	_, err := svc.List(context.Background(), "s.myshopify.com", 0, 5, "")
	if err == nil {
		t.Fatal("expected error when one record's enrichment fails")
	}
	if kind := errx.KindOf(err); kind != errx.Unavailable {
		t.Errorf("error kind = %v, want Unavailable", kind)
	}

	// Every record's enrichment ran to completion despite the failure.
	if fetcher.calls != 3 {
		t.Errorf("expected 3 product queries, got %d", fetcher.calls)
	}
}

func TestService_List_NegativeOffset(t *testing.T) {
	svc := NewService(&mockRepository{}, newTestEnricher(&mockFetcher{}, nil))

	_, err := svc.List(context.Background(), "s.myshopify.com", -1, 5, "")
	if err == nil {
		t.Fatal("expected error for negative offset")
	}
	if kind := errx.KindOf(err); kind != errx.Invalid {
		t.Errorf("error kind = %v, want Invalid", kind)
	}
}

func TestService_List_PassesFilterThrough(t *testing.T) {
	var gotShop, gotQuery string
	var gotOffset, gotLimit int

	repo := &mockRepository{
		listFunc: func(ctx context.Context, shop string, offset, limit int, query string) ([]QRCode, error) {
			gotShop, gotOffset, gotLimit, gotQuery = shop, offset, limit, query
			return []QRCode{}, nil
		},
	}
	svc := NewService(repo, newTestEnricher(&mockFetcher{}, nil))

	if _, err := svc.List(context.Background(), "s.myshopify.com", 10, 5, "promo"); err != nil {
		t.Fatalf("List() failed: %v", err)
	}

	if gotShop != "s.myshopify.com" || gotOffset != 10 || gotLimit != 5 || gotQuery != "promo" {
		t.Errorf("repo received (%s, %d, %d, %q)", gotShop, gotOffset, gotLimit, gotQuery)
	}
}

/***************
 * Count
 ***************/

func TestService_Count_MatchesListPredicate(t *testing.T) {
	// Count and List share the same predicate: with a store honouring it,
	// Count equals the length of an unbounded List for the same filter.
	records := []QRCode{storedRecord(1, "Promo A"), storedRecord(2, "Promo B")}

	repo := &mockRepository{
		listFunc: func(ctx context.Context, shop string, offset, limit int, query string) ([]QRCode, error) {
			return records, nil
		},
		countFunc: func(ctx context.Context, shop, query string) (int64, error) {
			return int64(len(records)), nil
		},
	}
	svc := NewService(repo, newTestEnricher(&mockFetcher{}, nil))

	listed, err := svc.List(context.Background(), "s.myshopify.com", 0, 1000, "Promo")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	count, err := svc.Count(context.Background(), "s.myshopify.com", "Promo")
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}

	if int64(len(listed)) != count {
		t.Errorf("len(List()) = %d, Count() = %d, want equal", len(listed), count)
	}
}

/***************
 * Get
 ***************/

func TestService_Get_NotFound(t *testing.T) {
	svc := NewService(&mockRepository{}, newTestEnricher(&mockFetcher{}, nil))

	_, err := svc.Get(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected error for missing record")
	}
	if kind := errx.KindOf(err); kind != errx.NotFound {
		t.Errorf("error kind = %v, want NotFound", kind)
	}
}

func TestService_Get_Enriches(t *testing.T) {
	stored := storedRecord(1, "Promo")
	repo := &mockRepository{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (QRCode, error) {
			if id != stored.ID {
				t.Errorf("GetByID id = %s, want %s", id, stored.ID)
			}
			return stored, nil
		},
	}
	fetcher := &mockFetcher{
		productFunc: func(ctx context.Context, id string) (*shopify.Product, error) {
			return &shopify.Product{Title: "Promo Item"}, nil
		},
	}
	svc := NewService(repo, newTestEnricher(fetcher, nil))

	got, err := svc.Get(context.Background(), stored.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.ProductTitle == nil || *got.ProductTitle != "Promo Item" {
		t.Errorf("ProductTitle = %v, want 'Promo Item'", got.ProductTitle)
	}
	if got.DestinationURL != "https://s.myshopify.com/products/promo" {
		t.Errorf("DestinationURL = %q", got.DestinationURL)
	}
}

/***************
 * Create / Update / Delete
 ***************/

func TestService_Create_ValidationFailure(t *testing.T) {
	repoCalled := false
	repo := &mockRepository{
		createFunc: func(ctx context.Context, qr QRCode) (QRCode, error) {
			repoCalled = true
			return qr, nil
		},
	}
	svc := NewService(repo, newTestEnricher(&mockFetcher{}, nil))

	_, fieldErrors, err := svc.Create(context.Background(), "s.myshopify.com", Payload{
		Title:       "",
		ProductID:   "P",
		Destination: "product",
	})
	if err != nil {
		t.Fatalf("Create() returned unexpected error: %v", err)
	}
	if fieldErrors == nil {
		t.Fatal("expected field errors, got nil")
	}
	if _, ok := fieldErrors["title"]; !ok {
		t.Errorf("expected error for field 'title', got %v", fieldErrors)
	}
	if len(fieldErrors) != 1 {
		t.Errorf("expected exactly 1 field error, got %v", fieldErrors)
	}
	if repoCalled {
		t.Error("repository must not be called for invalid payloads")
	}
}

func TestService_Create_Valid(t *testing.T) {
	repo := &mockRepository{
		createFunc: func(ctx context.Context, qr QRCode) (QRCode, error) {
			if qr.Shop != "s.myshopify.com" {
				t.Errorf("persisted shop = %q", qr.Shop)
			}
			qr.ID = uuid.New()
			qr.CreatedAt = time.Now()
			return qr, nil
		},
	}
	svc := NewService(repo, newTestEnricher(&mockFetcher{}, nil))

	created, fieldErrors, err := svc.Create(context.Background(), "s.myshopify.com", Payload{
		Title:       "Promo",
		ProductID:   "gid://shopify/Product/1",
		Destination: "product",
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if fieldErrors != nil {
		t.Fatalf("unexpected field errors: %v", fieldErrors)
	}
	if created.ID == uuid.Nil {
		t.Error("expected generated id")
	}
	if created.Destination != DestinationProduct {
		t.Errorf("Destination = %q, want product", created.Destination)
	}
}

func TestService_Update_ValidationFailure(t *testing.T) {
	svc := NewService(&mockRepository{}, newTestEnricher(&mockFetcher{}, nil))

	_, fieldErrors, err := svc.Update(context.Background(), uuid.New(), Payload{})
	if err != nil {
		t.Fatalf("Update() returned unexpected error: %v", err)
	}
	if len(fieldErrors) != 3 {
		t.Errorf("expected 3 field errors, got %v", fieldErrors)
	}
}

func TestService_Delete_PropagatesNotFound(t *testing.T) {
	repo := &mockRepository{
		deleteFunc: func(ctx context.Context, id uuid.UUID) error {
			return errx.E("qrcode.repo.Delete", errx.NotFound, errors.New("no rows"))
		},
	}
	svc := NewService(repo, newTestEnricher(&mockFetcher{}, nil))

	err := svc.Delete(context.Background(), uuid.New())
	if kind := errx.KindOf(err); kind != errx.NotFound {
		t.Errorf("error kind = %v, want NotFound", kind)
	}
}

/***************
 * Scan
 ***************/

func TestService_Scan(t *testing.T) {
	stored := storedRecord(1, "Promo")
	stored.Destination = DestinationCart
	stored.ProductVariantID = "gid://shopify/ProductVariant/42"

	incremented := false
	repo := &mockRepository{
		incrementScansFunc: func(ctx context.Context, id uuid.UUID) (QRCode, error) {
			incremented = true
			qr := stored
			qr.Scans = stored.Scans + 1
			return qr, nil
		},
	}
	svc := NewService(repo, newTestEnricher(&mockFetcher{}, nil))

	url, err := svc.Scan(context.Background(), stored.ID)
	if err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}
	if !incremented {
		t.Error("expected scan counter increment")
	}
	if want := "https://s.myshopify.com/cart/42:1"; url != want {
		t.Errorf("Scan() = %q, want %q", url, want)
	}
}

func TestService_Scan_MalformedRecord(t *testing.T) {
	stored := storedRecord(1, "Promo")
	stored.Destination = DestinationCart
	stored.ProductVariantID = "garbage"

	repo := &mockRepository{
		incrementScansFunc: func(ctx context.Context, id uuid.UUID) (QRCode, error) {
			return stored, nil
		},
	}
	svc := NewService(repo, newTestEnricher(&mockFetcher{}, nil))

	_, err := svc.Scan(context.Background(), stored.ID)
	if err == nil {
		t.Fatal("expected error for malformed stored record")
	}
	if kind := errx.KindOf(err); kind != errx.Malformed {
		t.Errorf("error kind = %v, want Malformed", kind)
	}
}

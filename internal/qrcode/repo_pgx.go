package qrcode

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sundayezeilo/qrcodes/internal/errx"
)

// dbtx is the subset of pgxpool.Pool the repository needs. Keeping it an
// interface lets tests substitute a pgx transaction or mock.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repo struct {
	db dbtx
}

// NewRepository creates a Repository backed by Postgres.
func NewRepository(db dbtx) Repository {
	return &repo{db: db}
}

const qrCodeColumns = `id, shop, title, product_id, product_handle, product_variant_id, destination, scans, created_at`

func scanQRCode(row pgx.Row) (QRCode, error) {
	var qr QRCode
	err := row.Scan(
		&qr.ID,
		&qr.Shop,
		&qr.Title,
		&qr.ProductID,
		&qr.ProductHandle,
		&qr.ProductVariantID,
		&qr.Destination,
		&qr.Scans,
		&qr.CreatedAt,
	)
	return qr, err
}

func mapRepoError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errx.E(op, errx.NotFound, err)
	}
	return errx.E(op, errx.Unavailable, err)
}

// likePattern builds a contains-pattern for LIKE, escaping the wildcard
// metacharacters so the search is a literal substring match. An empty
// query yields "%%" which matches every title.
func likePattern(query string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query)
	return "%" + escaped + "%"
}

func (r *repo) Create(ctx context.Context, qr QRCode) (QRCode, error) {
	const op = "qrcode.repo.Create"

	if qr.ID == uuid.Nil {
		// UUIDv7: time-ordered, so ORDER BY id DESC lists newest first.
		id, err := uuid.NewV7()
		if err != nil {
			return QRCode{}, errx.E(op, errx.Internal, err)
		}
		qr.ID = id
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO qr_codes (id, shop, title, product_id, product_handle, product_variant_id, destination)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+qrCodeColumns,
		qr.ID, qr.Shop, qr.Title, qr.ProductID, qr.ProductHandle, qr.ProductVariantID, qr.Destination,
	)

	created, err := scanQRCode(row)
	if err != nil {
		return QRCode{}, mapRepoError(op, err)
	}
	return created, nil
}

func (r *repo) GetByID(ctx context.Context, id uuid.UUID) (QRCode, error) {
	const op = "qrcode.repo.GetByID"

	row := r.db.QueryRow(ctx, `
		SELECT `+qrCodeColumns+`
		FROM qr_codes
		WHERE id = $1`,
		id,
	)

	qr, err := scanQRCode(row)
	if err != nil {
		return QRCode{}, mapRepoError(op, err)
	}
	return qr, nil
}

func (r *repo) List(ctx context.Context, shop string, offset, limit int, query string) ([]QRCode, error) {
	const op = "qrcode.repo.List"

	rows, err := r.db.Query(ctx, `
		SELECT `+qrCodeColumns+`
		FROM qr_codes
		WHERE shop = $1 AND title LIKE $2
		ORDER BY id DESC
		OFFSET $3 LIMIT $4`,
		shop, likePattern(query), offset, limit,
	)
	if err != nil {
		return nil, mapRepoError(op, err)
	}
	defer rows.Close()

	records := make([]QRCode, 0, limit)
	for rows.Next() {
		qr, err := scanQRCode(rows)
		if err != nil {
			return nil, mapRepoError(op, err)
		}
		records = append(records, qr)
	}
	if err := rows.Err(); err != nil {
		return nil, mapRepoError(op, err)
	}
	return records, nil
}

func (r *repo) Count(ctx context.Context, shop, query string) (int64, error) {
	const op = "qrcode.repo.Count"

	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT count(*)
		FROM qr_codes
		WHERE shop = $1 AND title LIKE $2`,
		shop, likePattern(query),
	).Scan(&count)
	if err != nil {
		return 0, mapRepoError(op, err)
	}
	return count, nil
}

func (r *repo) Update(ctx context.Context, qr QRCode) (QRCode, error) {
	const op = "qrcode.repo.Update"

	// Shop and created_at are immutable; only the editable fields move.
	row := r.db.QueryRow(ctx, `
		UPDATE qr_codes
		SET title = $2,
		    product_id = $3,
		    product_handle = $4,
		    product_variant_id = $5,
		    destination = $6
		WHERE id = $1
		RETURNING `+qrCodeColumns,
		qr.ID, qr.Title, qr.ProductID, qr.ProductHandle, qr.ProductVariantID, qr.Destination,
	)

	updated, err := scanQRCode(row)
	if err != nil {
		return QRCode{}, mapRepoError(op, err)
	}
	return updated, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "qrcode.repo.Delete"

	tag, err := r.db.Exec(ctx, `DELETE FROM qr_codes WHERE id = $1`, id)
	if err != nil {
		return mapRepoError(op, err)
	}
	if tag.RowsAffected() == 0 {
		return errx.E(op, errx.NotFound, pgx.ErrNoRows)
	}
	return nil
}

func (r *repo) IncrementScans(ctx context.Context, id uuid.UUID) (QRCode, error) {
	const op = "qrcode.repo.IncrementScans"

	row := r.db.QueryRow(ctx, `
		UPDATE qr_codes
		SET scans = scans + 1
		WHERE id = $1
		RETURNING `+qrCodeColumns,
		id,
	)

	qr, err := scanQRCode(row)
	if err != nil {
		return QRCode{}, mapRepoError(op, err)
	}
	return qr, nil
}

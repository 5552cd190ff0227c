package qrcode

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/sundayezeilo/qrcodes/internal/errx"
	"github.com/sundayezeilo/qrcodes/internal/httpx"
)

// PageSize is the fixed number of rows per listing page.
const PageSize = 5

// CreateQRCodeRequest is the JSON request body for creating or updating a record.
type CreateQRCodeRequest struct {
	Title            string `json:"title"`
	ProductID        string `json:"productId"`
	ProductHandle    string `json:"productHandle,omitempty"`
	ProductVariantID string `json:"productVariantId,omitempty"`
	Destination      string `json:"destination"`
}

// QRCodeResponse is the JSON shape of a persisted record.
type QRCodeResponse struct {
	ID               string `json:"id"`
	Shop             string `json:"shop"`
	Title            string `json:"title"`
	ProductID        string `json:"productId"`
	ProductHandle    string `json:"productHandle"`
	ProductVariantID string `json:"productVariantId"`
	Destination      string `json:"destination"`
	Scans            int64  `json:"scans"`
	CreatedAt        string `json:"createdAt"`
}

// EnrichedQRCodeResponse is a record joined with live product data.
type EnrichedQRCodeResponse struct {
	QRCodeResponse

	ProductDeleted bool    `json:"productDeleted"`
	ProductTitle   *string `json:"productTitle"`
	ProductImage   *string `json:"productImage"`
	ProductAlt     *string `json:"productAlt"`
	DestinationURL string  `json:"destinationUrl"`
	Image          string  `json:"image"`
}

// ListQRCodesResponse is the paginated listing payload. Total lets the
// caller compute whether more pages exist.
type ListQRCodesResponse struct {
	QRCodes []EnrichedQRCodeResponse `json:"qrCodes"`
	Start   int                      `json:"start"`
	Total   int64                    `json:"total"`
	Query   string                   `json:"query,omitempty"`
}

// Handler provides HTTP handlers for the QR code service.
type Handler struct {
	service Service
	logger  *slog.Logger
	shop    string
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Service Service
	Logger  *slog.Logger
	Shop    string // tenant the API serves; the auth layer in front establishes it
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		service: cfg.Service,
		logger:  logger,
		shop:    cfg.Shop,
	}
}

// ListQRCodes handles GET /api/qrcodes?start=N&key=Q — one page of enriched
// records plus the total matching count.
func (h *Handler) ListQRCodes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	start := 0
	if raw := r.URL.Query().Get("start"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			logger.WarnContext(ctx, "invalid start parameter", "start", raw)
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request",
				"start must be a non-negative integer", nil)
			return
		}
		start = parsed
	}
	query := r.URL.Query().Get("key")

	records, err := h.service.List(ctx, h.shop, start, PageSize, query)
	if err != nil {
		h.handleServiceError(ctx, w, err, "failed to list qr codes")
		return
	}

	total, err := h.service.Count(ctx, h.shop, query)
	if err != nil {
		h.handleServiceError(ctx, w, err, "failed to count qr codes")
		return
	}

	resp := ListQRCodesResponse{
		QRCodes: make([]EnrichedQRCodeResponse, 0, len(records)),
		Start:   start,
		Total:   total,
		Query:   query,
	}
	for _, e := range records {
		resp.QRCodes = append(resp.QRCodes, toEnrichedResponse(e))
	}

	logger.InfoContext(ctx, "qr codes listed",
		"count", len(records),
		"total", total,
		"start", start,
	)

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// GetQRCode handles GET /api/qrcodes/{id}.
func (h *Handler) GetQRCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	enriched, err := h.service.Get(ctx, id)
	if err != nil {
		h.handleServiceError(ctx, w, err, "failed to get qr code")
		return
	}

	logger.InfoContext(ctx, "qr code fetched", "qr_code_id", id.String())
	httpx.WriteJSON(w, http.StatusOK, toEnrichedResponse(enriched))
}

// CreateQRCode handles POST /api/qrcodes.
func (h *Handler) CreateQRCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	req, err := httpx.DecodeJSON[CreateQRCodeRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	created, fieldErrors, err := h.service.Create(ctx, h.shop, toPayload(req))
	if err != nil {
		h.handleServiceError(ctx, w, err, "failed to create qr code")
		return
	}
	if fieldErrors != nil {
		logger.WarnContext(ctx, "qr code validation failed", "fields", len(fieldErrors))
		httpx.WriteError(w, http.StatusUnprocessableEntity, "validation_failed",
			"qr code payload is invalid", fieldErrors)
		return
	}

	logger.InfoContext(ctx, "qr code created",
		"qr_code_id", created.ID.String(),
		"destination", string(created.Destination),
	)
	httpx.WriteJSON(w, http.StatusCreated, toQRCodeResponse(created))
}

// UpdateQRCode handles PUT /api/qrcodes/{id}.
func (h *Handler) UpdateQRCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	req, err := httpx.DecodeJSON[CreateQRCodeRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	updated, fieldErrors, err := h.service.Update(ctx, id, toPayload(req))
	if err != nil {
		h.handleServiceError(ctx, w, err, "failed to update qr code")
		return
	}
	if fieldErrors != nil {
		logger.WarnContext(ctx, "qr code validation failed", "fields", len(fieldErrors))
		httpx.WriteError(w, http.StatusUnprocessableEntity, "validation_failed",
			"qr code payload is invalid", fieldErrors)
		return
	}

	logger.InfoContext(ctx, "qr code updated", "qr_code_id", id.String())
	httpx.WriteJSON(w, http.StatusOK, toQRCodeResponse(updated))
}

// DeleteQRCode handles DELETE /api/qrcodes/{id}.
func (h *Handler) DeleteQRCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, id); err != nil {
		h.handleServiceError(ctx, w, err, "failed to delete qr code")
		return
	}

	logger.InfoContext(ctx, "qr code deleted", "qr_code_id", id.String())
	w.WriteHeader(http.StatusNoContent)
}

// ScanQRCode handles GET /qrcodes/{id}/scan — the public endpoint encoded
// into every QR image. It counts the hit and redirects to the destination.
func (h *Handler) ScanQRCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	destinationURL, err := h.service.Scan(ctx, id)
	if err != nil {
		h.handleServiceError(ctx, w, err, "failed to resolve scan")
		return
	}

	logger.InfoContext(ctx, "qr code scanned",
		"qr_code_id", id.String(),
		"destination_url", destinationURL,
		"user_agent", r.UserAgent(),
	)

	http.Redirect(w, r, destinationURL, http.StatusFound)
}

func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With(
		"request_id", httpx.GetRequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
	)
}

// pathID parses the {id} path segment, writing a 400 response on failure.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.requestLogger(r).WarnContext(r.Context(), "invalid qr code id",
			"id", r.PathValue("id"),
		)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request",
			"qr code id must be a valid UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}

// handleServiceError maps service errors onto HTTP responses by kind.
func (h *Handler) handleServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	kind := errx.KindOf(err)

	logAttrs := []any{
		"error", err.Error(),
		"error_kind", kind,
		"operation", errx.OpOf(err),
	}

	switch kind {
	case errx.NotFound:
		h.logger.WarnContext(ctx, msg, logAttrs...)
		httpx.WriteError(w, http.StatusNotFound, "not_found",
			"qr code doesn't exist", nil)

	case errx.Invalid:
		h.logger.WarnContext(ctx, msg, logAttrs...)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)

	case errx.Unavailable:
		h.logger.ErrorContext(ctx, msg, logAttrs...)
		httpx.WriteError(w, http.StatusServiceUnavailable, "unavailable",
			"A dependent service is unreachable. Please try again.", nil)

	case errx.Malformed:
		// Stored data violated an invariant; nothing the client can fix.
		h.logger.ErrorContext(ctx, "corrupted qr code record", logAttrs...)
		httpx.WriteError(w, http.StatusInternalServerError, "malformed_record",
			"The stored record is corrupted.", nil)

	default:
		h.logger.ErrorContext(ctx, msg, logAttrs...)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error",
			"Something went wrong. Please try again.", nil)
	}
}

func toPayload(req CreateQRCodeRequest) Payload {
	return Payload{
		Title:            req.Title,
		ProductID:        req.ProductID,
		ProductHandle:    req.ProductHandle,
		ProductVariantID: req.ProductVariantID,
		Destination:      req.Destination,
	}
}

func toQRCodeResponse(qr QRCode) QRCodeResponse {
	return QRCodeResponse{
		ID:               qr.ID.String(),
		Shop:             qr.Shop,
		Title:            qr.Title,
		ProductID:        qr.ProductID,
		ProductHandle:    qr.ProductHandle,
		ProductVariantID: qr.ProductVariantID,
		Destination:      string(qr.Destination),
		Scans:            qr.Scans,
		CreatedAt:        qr.CreatedAt.Format(time.RFC3339),
	}
}

func toEnrichedResponse(e Enriched) EnrichedQRCodeResponse {
	return EnrichedQRCodeResponse{
		QRCodeResponse: toQRCodeResponse(e.QRCode),
		ProductDeleted: e.ProductDeleted,
		ProductTitle:   e.ProductTitle,
		ProductImage:   e.ProductImage,
		ProductAlt:     e.ProductAlt,
		DestinationURL: e.DestinationURL,
		Image:          e.Image,
	}
}

package handler

import (
	"net/http"
	"strconv"
	"strings"

	"attire-store/internal/model"
	"attire-store/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProductHandler handles public catalogue HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products requests with filtering and pagination.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	q := r.URL.Query()

	filter := model.ProductFilter{
		Query: q.Get("q"),
		Sort:  q.Get("sort"),
	}
	if v := q.Get("sizes"); v != "" {
		filter.Sizes = strings.Split(v, ",")
	}
	if v := q.Get("colors"); v != "" {
		filter.Colors = strings.Split(v, ",")
	}

	var err error
	if filter.MinPriceCents, err = parseOptionalInt64(q.Get("minPrice")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid minPrice parameter", h.logger)
		return
	}
	if filter.MaxPriceCents, err = parseOptionalInt64(q.Get("maxPrice")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid maxPrice parameter", h.logger)
		return
	}
	if filter.Limit, filter.Offset, err = parsePaging(q.Get("limit"), q.Get("offset")); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	products, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve products", h.logger)
		return
	}

	if products == nil {
		products = []model.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// GetByID handles GET /api/products/{id} requests.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	id, err := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/api/products/"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product ID format", h.logger)
		return
	}

	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// GetBySlug handles GET /api/products/slug/{slug} requests.
func (h *ProductHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	slug := strings.TrimPrefix(r.URL.Path, "/api/products/slug/")
	if slug == "" {
		writeError(w, http.StatusBadRequest, "product slug is required", h.logger)
		return
	}

	product, err := h.service.GetBySlug(r.Context(), slug)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// parseOptionalInt64 parses an optional numeric query parameter.
func parseOptionalInt64(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// parsePaging parses limit/offset query parameters with defaults.
func parsePaging(limitStr, offsetStr string) (int, int, error) {
	limit := 10
	offset := 0

	if limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil {
			return 0, 0, errInvalidLimit
		}
		limit = v
	}
	if offsetStr != "" {
		v, err := strconv.Atoi(offsetStr)
		if err != nil {
			return 0, 0, errInvalidOffset
		}
		offset = v
	}

	return limit, offset, nil
}

var (
	errInvalidLimit  = model.NewDomainError(model.ErrCodeInvalidArgument, "invalid limit parameter")
	errInvalidOffset = model.NewDomainError(model.ErrCodeInvalidArgument, "invalid offset parameter")
)

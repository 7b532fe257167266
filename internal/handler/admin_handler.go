package handler

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"attire-store/internal/model"
	"attire-store/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxUploadBytes caps the in-memory portion of a multipart product upload.
const maxUploadBytes = 32 << 20

// AdminHandler handles the admin surface: product CRUD, order management
// and analytics. The router guards it with RequireAdmin.
type AdminHandler struct {
	products service.ProductService
	orders   service.OrderService
	logger   zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(products service.ProductService, orders service.OrderService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		products: products,
		orders:   orders,
		logger:   logger.With().Str("handler", "admin").Logger(),
	}
}

// CreateProduct handles POST /api/admin/products multipart requests with a
// "product" JSON part and optional "images" file parts.
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	req, images, ok := h.parseProductForm(w, r)
	if !ok {
		return
	}

	product, err := h.products.Create(r.Context(), req, images)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/admin/products/{id} multipart requests.
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/api/admin/products/"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product ID format", h.logger)
		return
	}

	req, images, ok := h.parseProductForm(w, r)
	if !ok {
		return
	}

	product, err := h.products.Update(r.Context(), id, req, images)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/admin/products/{id} requests.
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/api/admin/products/"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product ID format", h.logger)
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListOrders handles GET /api/admin/orders requests.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	limit, offset, err := parsePaging(r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	page, err := h.orders.ListAll(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve orders", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// UpdateOrderStatus handles PUT /api/admin/orders/{id}/status requests.
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/admin/orders/")
	idStr = strings.TrimSuffix(idStr, "/status")
	orderID, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID format", h.logger)
		return
	}

	var req model.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrCodeInvalidJSON,
			Message: "invalid request body",
		})
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Analytics handles GET /api/admin/analytics requests.
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid days parameter", h.logger)
			return
		}
		days = parsed
	}

	analytics, err := h.orders.Analytics(r.Context(), days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to calculate analytics", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, analytics)
}

// parseProductForm decodes the multipart product payload. It writes the
// error response itself and reports success via ok.
func (h *AdminHandler) parseProductForm(w http.ResponseWriter, r *http.Request) (*model.CreateProductRequest, []*multipart.FileHeader, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form", h.logger)
		return nil, nil, false
	}

	var req model.CreateProductRequest
	if err := json.Unmarshal([]byte(r.FormValue("product")), &req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrCodeInvalidJSON,
			Message: "invalid product payload",
		})
		return nil, nil, false
	}

	var images []*multipart.FileHeader
	if r.MultipartForm != nil {
		images = r.MultipartForm.File["images"]
	}

	return &req, images, true
}

package handler

import (
	"net/http"

	"stylecore/internal/middleware"
	"stylecore/internal/model"
	"stylecore/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders. Without items the caller's cart is
// checked out.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.CreateOrder(r.Context(), middleware.UserID(r.Context()), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// ListMine handles GET /api/orders.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListForUser(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetByID handles GET /api/orders/{id}. The owner's key grants access to
// any order.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	order, err := h.service.GetByID(ctx, middleware.UserID(ctx), r.PathValue("id"), middleware.IsOwner(ctx))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// ListAll handles GET /api/admin/orders.
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid limit parameter", h.logger)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid offset parameter", h.logger)
		return
	}

	orders, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// UpdateStatus handles PUT /api/admin/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateOrderStatusRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// RecordPayment handles POST /api/admin/orders/{id}/payment, called by the
// payment gateway integration once a payment is verified.
func (h *OrderHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req model.RecordPaymentRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.RecordPayment(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

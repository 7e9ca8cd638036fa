package handler

import (
	"net/http"

	"shopfront/internal/model"
	"shopfront/internal/service"

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

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateOrderRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), currentUser(r).ID, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusCreated, "Order created successfully", order)
}

// ListMine handles GET /orders.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListMine(r.Context(), currentUser(r).ID, r.URL.Query())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respondPage(w, "Orders retrieved successfully", page, h.logger)
}

// ListAll handles GET /orders/all.
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListAll(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respondPage(w, "Orders retrieved successfully", page, h.logger)
}

// Get handles GET /orders/{orderId}. The id may be the UUID or the ORD- reference.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Get(r.Context(), currentUser(r), r.PathValue("orderId"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Order retrieved successfully", order)
}

// UpdateStatus handles PATCH /orders/{orderId}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateOrderStatusRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), r.PathValue("orderId"), req.Status)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Order status updated successfully", order)
}

// Cancel handles PATCH /orders/{orderId}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Cancel(r.Context(), currentUser(r).ID, r.PathValue("orderId"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Order cancelled successfully", order)
}

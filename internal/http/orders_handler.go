package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/blastmusic247/blast-gear-full/internal/domain"
	"github.com/blastmusic247/blast-gear-full/internal/orders"
	"github.com/go-chi/chi/v5"
)

// OrderStore is the slice of order persistence the HTTP layer needs.
type OrderStore interface {
	GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
	Delete(ctx context.Context, orderID string) error
}

type OrdersHandler struct {
	store   OrderStore
	timeout time.Duration
}

func NewOrdersHandler(store OrderStore, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		store:   store,
		timeout: timeout,
	}
}

type StatusUpdateRequestDTO struct {
	Status string `json:"status"`
}

// GetOrder is the public order-tracking endpoint.
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID := chi.URLParam(r, "orderId")
	order, err := h.store.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "Order not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load order")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	all, err := h.store.List(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list orders")
		return
	}

	respondJSON(w, http.StatusOK, all)
}

func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID := chi.URLParam(r, "orderId")

	var req StatusUpdateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	status := domain.OrderStatus(req.Status)
	if !status.Valid() {
		respondError(w, http.StatusBadRequest, "invalid_status", "status must be one of Processing, Shipped, Delivered, Cancelled")
		return
	}

	if err := h.store.UpdateStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "Order not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update order status")
		return
	}

	order, err := h.store.GetByOrderID(ctx, orderID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load order")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID := chi.URLParam(r, "orderId")
	if err := h.store.Delete(ctx, orderID); err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "Order not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to delete order")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Order deleted",
	})
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/blastmusic247/blast-gear-full/internal/cart"
	"github.com/blastmusic247/blast-gear-full/internal/checkout"
	"github.com/blastmusic247/blast-gear-full/internal/domain"
	"github.com/blastmusic247/blast-gear-full/internal/promo"
)

// OrderPlacer is the slice of the checkout service this handler needs.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, store *cart.Store, req *checkout.PlaceOrderRequest) (*domain.Order, error)
}

type CheckoutHandler struct {
	placer  OrderPlacer
	carts   StoreProvider
	timeout time.Duration
}

func NewCheckoutHandler(placer OrderPlacer, carts StoreProvider, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		placer:  placer,
		carts:   carts,
		timeout: timeout,
	}
}

type CheckoutRequestDTO struct {
	Customer     domain.CustomerInfo `json:"customer"`
	PromoCode    string              `json:"promoCode"`
	PaymentToken string              `json:"paymentToken"`
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Customer.Email == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "customer email is required")
		return
	}

	store := h.carts.ForSession(getSessionID(r.Context()))
	order, err := h.placer.PlaceOrder(ctx, store, &checkout.PlaceOrderRequest{
		Customer:     req.Customer,
		PromoCode:    req.PromoCode,
		PaymentToken: req.PaymentToken,
	})
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	var invalid *promo.InvalidCodeError
	var payment *checkout.PaymentError
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.As(err, &invalid):
		respondError(w, http.StatusBadRequest, "invalid_promo", invalid.Message)
	case errors.As(err, &payment):
		respondError(w, http.StatusPaymentRequired, "payment_failed", "payment could not be processed")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "checkout failed")
	}
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/blastmusic247/blast-gear-full/internal/cart"
	"github.com/blastmusic247/blast-gear-full/internal/catalog"
	"github.com/blastmusic247/blast-gear-full/internal/domain"
	"github.com/go-chi/chi/v5"
)

// StoreProvider hands out the cart store bound to one shopper session.
type StoreProvider interface {
	ForSession(id string) *cart.Store
}

type CartHandler struct {
	carts    StoreProvider
	products catalog.ProductRepository
	timeout  time.Duration
}

func NewCartHandler(carts StoreProvider, products catalog.ProductRepository, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:    carts,
		products: products,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	store := h.carts.ForSession(getSessionID(r.Context()))
	items, err := store.Items(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	respondJSON(w, http.StatusOK, items)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	// Price and display data come from the catalog, never from the client.
	product, err := h.products.GetByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to look up product")
		return
	}

	store := h.carts.ForSession(getSessionID(r.Context()))
	items, err := store.Add(ctx, *product, req.Size, req.Quantity)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update cart")
		return
	}

	respondJSON(w, http.StatusCreated, items)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cartID := chi.URLParam(r, "cartId")
	if cartID == "" {
		respondError(w, http.StatusBadRequest, "invalid_cart_id", "cartId is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	store := h.carts.ForSession(getSessionID(r.Context()))
	items, err := store.UpdateQuantity(ctx, cartID, req.Quantity)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update cart")
		return
	}

	respondJSON(w, http.StatusOK, items)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cartID := chi.URLParam(r, "cartId")
	if cartID == "" {
		respondError(w, http.StatusBadRequest, "invalid_cart_id", "cartId is required")
		return
	}

	store := h.carts.ForSession(getSessionID(r.Context()))
	items, err := store.Remove(ctx, cartID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update cart")
		return
	}

	respondJSON(w, http.StatusOK, items)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	store := h.carts.ForSession(getSessionID(r.Context()))
	if err := store.Clear(ctx); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to clear cart")
		return
	}

	respondJSON(w, http.StatusOK, domain.Cart{})
}

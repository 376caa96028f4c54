package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/blastmusic247/blast-gear-full/internal/domain"
	"github.com/blastmusic247/blast-gear-full/internal/promo"
	"github.com/go-chi/chi/v5"
)

type PromoHandler struct {
	validator promo.Validator
	repo      promo.Repository
	timeout   time.Duration
}

func NewPromoHandler(validator promo.Validator, repo promo.Repository, timeout time.Duration) *PromoHandler {
	return &PromoHandler{
		validator: validator,
		repo:      repo,
		timeout:   timeout,
	}
}

type ValidatePromoRequestDTO struct {
	Code       string  `json:"code"`
	OrderTotal float64 `json:"orderTotal"`
}

// ValidatePromoResponseDTO mirrors the fields the storefront shows when a
// code is accepted. Valid is always true here; rejections use ErrorResponse.
type ValidatePromoResponseDTO struct {
	Valid bool `json:"valid"`
	domain.PromoApplication
}

func (h *PromoHandler) ValidatePromo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ValidatePromoRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	app, err := h.validator.Validate(ctx, req.Code, req.OrderTotal)
	if err != nil {
		handlePromoError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ValidatePromoResponseDTO{
		Valid:            true,
		PromoApplication: *app,
	})
}

func (h *PromoHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	code := chi.URLParam(r, "code")
	if err := h.validator.ConfirmUsage(ctx, code); err != nil {
		if errors.Is(err, promo.ErrPromoNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "Promo code not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to apply promo code")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Promo code applied",
	})
}

type PromoCodeRequestDTO struct {
	Code          string              `json:"code"`
	DiscountType  domain.DiscountType `json:"discountType"`
	DiscountValue float64             `json:"discountValue"`
	Description   string              `json:"description"`
	ExpiryDate    *time.Time          `json:"expiryDate"`
	UsageLimit    *int                `json:"usageLimit"`
}

func (d *PromoCodeRequestDTO) validate() (string, bool) {
	if d.Code == "" {
		return "code is required", false
	}
	if d.DiscountType != domain.DiscountPercentage && d.DiscountType != domain.DiscountFixed {
		return "discountType must be 'percentage' or 'fixed'", false
	}
	if d.DiscountValue <= 0 {
		return "discountValue must be positive", false
	}
	return "", true
}

func (h *PromoHandler) CreatePromoCode(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req PromoCodeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if msg, ok := req.validate(); !ok {
		respondError(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	code := &domain.PromoCode{
		Code:          req.Code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		Description:   req.Description,
		ExpiryDate:    req.ExpiryDate,
		UsageLimit:    req.UsageLimit,
		IsActive:      true,
	}
	if err := h.repo.Create(ctx, code); err != nil {
		if errors.Is(err, promo.ErrDuplicateCode) {
			respondError(w, http.StatusBadRequest, "already_exists", "Promo code already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to create promo code")
		return
	}

	respondJSON(w, http.StatusCreated, code)
}

func (h *PromoHandler) ListPromoCodes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	codes, err := h.repo.List(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list promo codes")
		return
	}

	respondJSON(w, http.StatusOK, codes)
}

func (h *PromoHandler) UpdatePromoCode(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := chi.URLParam(r, "promoId")

	var req PromoCodeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if msg, ok := req.validate(); !ok {
		respondError(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	code := &domain.PromoCode{
		Code:          req.Code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		Description:   req.Description,
		ExpiryDate:    req.ExpiryDate,
		UsageLimit:    req.UsageLimit,
		IsActive:      true,
	}
	if err := h.repo.Update(ctx, id, code); err != nil {
		if errors.Is(err, promo.ErrPromoNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "Promo code not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update promo code")
		return
	}

	respondJSON(w, http.StatusOK, code)
}

func (h *PromoHandler) DeletePromoCode(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := chi.URLParam(r, "promoId")
	if err := h.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, promo.ErrPromoNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "Promo code not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to delete promo code")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Promo code deleted",
	})
}

func handlePromoError(w http.ResponseWriter, err error) {
	var invalid *promo.InvalidCodeError
	switch {
	case errors.As(err, &invalid):
		if invalid.NotFound {
			respondError(w, http.StatusNotFound, "invalid_code", invalid.Message)
			return
		}
		respondError(w, http.StatusBadRequest, "invalid_code", invalid.Message)
	case errors.Is(err, promo.ErrEmptyCode):
		respondError(w, http.StatusBadRequest, "invalid_request", "code is required")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to validate promo code")
	}
}

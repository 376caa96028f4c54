package promo

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/blastmusic247/blast-gear-full/internal/domain"
	"github.com/sirupsen/logrus"
)

// Validator is what checkout needs from the promo subsystem: validate a
// code against a pre-discount order total, and confirm usage once an order
// is actually placed. ConfirmUsage is best-effort at every call site.
type Validator interface {
	Validate(ctx context.Context, code string, orderTotal float64) (*domain.PromoApplication, error)
	ConfirmUsage(ctx context.Context, code string) error
}

type Service struct {
	repo Repository
	log  *logrus.Logger
	now  func() time.Time
}

func NewService(repo Repository, log *logrus.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// Validate checks a code against active/expiry/usage-limit rules and
// resolves the discount amount for the given pre-discount total. The
// discount never exceeds the total. Rejections come back as
// *InvalidCodeError with a message fit for display.
func (s *Service) Validate(ctx context.Context, code string, orderTotal float64) (*domain.PromoApplication, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, ErrEmptyCode
	}

	promo, err := s.repo.GetByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, ErrPromoNotFound) {
			return nil, &InvalidCodeError{Message: "Invalid promo code", NotFound: true}
		}
		return nil, err
	}

	if !promo.IsActive {
		return nil, invalidCode("Promo code is no longer active")
	}
	if promo.ExpiryDate != nil && s.now().After(*promo.ExpiryDate) {
		return nil, invalidCode("Promo code has expired")
	}
	if promo.UsageLimit != nil && promo.UsedCount >= *promo.UsageLimit {
		return nil, invalidCode("Promo code usage limit reached")
	}

	var discount float64
	if promo.DiscountType == domain.DiscountPercentage {
		discount = orderTotal * promo.DiscountValue / 100
	} else {
		discount = promo.DiscountValue
	}
	if discount > orderTotal {
		discount = orderTotal
	}

	return &domain.PromoApplication{
		Code:           promo.Code,
		DiscountType:   promo.DiscountType,
		DiscountValue:  promo.DiscountValue,
		DiscountAmount: round2(discount),
		NewTotal:       round2(orderTotal - discount),
		Description:    promo.Description,
	}, nil
}

// ConfirmUsage increments the server-side usage counter. Called once per
// placed order, after payment succeeded.
func (s *Service) ConfirmUsage(ctx context.Context, code string) error {
	if err := s.repo.IncrementUsage(ctx, code); err != nil {
		return err
	}
	s.log.WithField("code", strings.ToUpper(code)).Info("promo usage confirmed")
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

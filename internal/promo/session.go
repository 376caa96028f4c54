package promo

import (
	"context"

	"github.com/blastmusic247/blast-gear-full/internal/domain"
)

// Session holds the promo application for one checkout. It is not
// persisted: a new checkout starts with nothing applied, and an application
// survives only as long as the session value itself.
//
// Apply moves NONE to APPLIED; Remove and a failed re-validation move back
// to NONE. Applying over an existing application requires replace=true;
// a failed replace leaves nothing applied rather than restoring the old
// code, since the old code may have been what just failed re-validation.
// Not safe for concurrent use; a checkout is a single caller.
type Session struct {
	validator Validator
	applied   *domain.PromoApplication
}

func NewSession(validator Validator) *Session {
	return &Session{validator: validator}
}

func (s *Session) Apply(ctx context.Context, code string, orderTotal float64, replace bool) (*domain.PromoApplication, error) {
	if s.applied != nil && !replace {
		return nil, ErrAlreadyApplied
	}

	app, err := s.validator.Validate(ctx, code, orderTotal)
	if err != nil {
		// A rejected re-validation clears whatever was applied before.
		s.applied = nil
		return nil, err
	}

	s.applied = app
	return app, nil
}

// Remove discards the applied code. The server is not told; usage counters
// only move on successful order placement.
func (s *Session) Remove() {
	s.applied = nil
}

func (s *Session) Applied() *domain.PromoApplication {
	return s.applied
}

// Discount is the amount to subtract from the pre-discount total, zero when
// nothing is applied.
func (s *Session) Discount() float64 {
	if s.applied == nil {
		return 0
	}
	return s.applied.DiscountAmount
}

package promo

import "errors"

var (
	ErrPromoNotFound  = errors.New("promo code not found")
	ErrDuplicateCode  = errors.New("promo code already exists")
	ErrEmptyCode      = errors.New("promo code is empty")
	ErrAlreadyApplied = errors.New("a promo code is already applied")
)

// InvalidCodeError is a rejection by the validation rules. The message is
// shown to the shopper verbatim. Unknown codes set NotFound so the HTTP
// layer can answer 404 instead of 400.
type InvalidCodeError struct {
	Message  string
	NotFound bool
}

func (e *InvalidCodeError) Error() string {
	return e.Message
}

func invalidCode(message string) *InvalidCodeError {
	return &InvalidCodeError{Message: message}
}

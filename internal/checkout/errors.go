package checkout

import "errors"

var ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

// PaymentError wraps a failed or declined charge.
type PaymentError struct {
	Err error
}

func (e *PaymentError) Error() string {
	return "payment failed: " + e.Err.Error()
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

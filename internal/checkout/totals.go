package checkout

import (
	"math"

	"github.com/blastmusic247/blast-gear-full/internal/domain"
)

const (
	// FlatShipping is charged on every order regardless of size.
	FlatShipping = 8.99
	// TaxRate applies to the merchandise subtotal only.
	TaxRate = 0.08
)

// Totals is the order price breakdown shown at checkout and recorded on the
// order.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// PreDiscount is subtotal + shipping + tax, the figure promo codes are
// validated against.
func (t Totals) PreDiscount() float64 {
	return round2(t.Subtotal + t.Shipping + t.Tax)
}

// ComputeTotals prices a cart with the given discount amount already
// resolved by the promo validator. The final total never goes below zero.
func ComputeTotals(cart domain.Cart, discount float64) Totals {
	subtotal := round2(cart.Subtotal())
	tax := round2(subtotal * TaxRate)
	t := Totals{
		Subtotal: subtotal,
		Shipping: FlatShipping,
		Tax:      tax,
		Discount: round2(discount),
	}
	t.Total = FinalTotal(t.PreDiscount(), discount)
	return t
}

// FinalTotal subtracts the discount from the pre-discount total, clamping
// at zero when the discount exceeds it.
func FinalTotal(preDiscount, discount float64) float64 {
	total := round2(preDiscount - discount)
	if total < 0 {
		return 0
	}
	return total
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

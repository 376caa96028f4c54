package domain

import "time"

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// PromoCode is the server-side promo definition. Codes are stored and
// matched upper-cased.
type PromoCode struct {
	ID            string       `json:"id" bson:"_id"`
	Code          string       `json:"code" bson:"code"`
	DiscountType  DiscountType `json:"discountType" bson:"discount_type"`
	DiscountValue float64      `json:"discountValue" bson:"discount_value"`
	Description   string       `json:"description" bson:"description"`
	ExpiryDate    *time.Time   `json:"expiryDate,omitempty" bson:"expiry_date,omitempty"`
	UsageLimit    *int         `json:"usageLimit,omitempty" bson:"usage_limit,omitempty"`
	UsedCount     int          `json:"usedCount" bson:"used_count"`
	IsActive      bool         `json:"isActive" bson:"is_active"`
	CreatedAt     time.Time    `json:"createdAt" bson:"created_at"`
}

// PromoApplication is the checkout-scoped result of validating a code
// against a concrete pre-discount order total. DiscountAmount is always the
// server-computed figure; callers never recompute it from type and value.
type PromoApplication struct {
	Code           string       `json:"code"`
	DiscountType   DiscountType `json:"discountType"`
	DiscountValue  float64      `json:"discountValue"`
	DiscountAmount float64      `json:"discountAmount"`
	NewTotal       float64      `json:"newTotal"`
	Description    string       `json:"description"`
}

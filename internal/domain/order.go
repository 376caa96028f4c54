package domain

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

type CustomerInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
}

// OrderItem is the finalized snapshot of a cart line item at order time.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
}

type Order struct {
	OrderID   string       `json:"orderId"`
	Customer  CustomerInfo `json:"customer"`
	Items     []OrderItem  `json:"items"`
	Subtotal  float64      `json:"subtotal"`
	Shipping  float64      `json:"shipping"`
	Tax       float64      `json:"tax"`
	Discount  float64      `json:"discount"`
	PromoCode string       `json:"promoCode,omitempty"`
	Total     float64      `json:"total"`
	Status    OrderStatus  `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// NewOrderID generates a human-readable order identifier like ORD-1735689600000.
func NewOrderID(now time.Time) string {
	return fmt.Sprintf("ORD-%d", now.UnixMilli())
}

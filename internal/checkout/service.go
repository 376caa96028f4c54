package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/blastmusic247/blast-gear-full/internal/cart"
	"github.com/blastmusic247/blast-gear-full/internal/domain"
	"github.com/blastmusic247/blast-gear-full/internal/promo"
	"github.com/sirupsen/logrus"
)

// EventOrderPlaced is written to the order outbox alongside every new order.
// The consumer confirms promo usage and sends notifications off this event.
const EventOrderPlaced = "order.placed"

// OrderRepository is what checkout needs from order persistence: the order
// and its outbox event land together or not at all.
type OrderRepository interface {
	CreateWithEvent(ctx context.Context, order *domain.Order, eventType string, payload []byte) error
}

// OrderPlacedPayload is the outbox event body.
type OrderPlacedPayload struct {
	OrderID   string    `json:"order_id"`
	PromoCode string    `json:"promo_code,omitempty"`
	Email     string    `json:"email"`
	Total     float64   `json:"total"`
	PlacedAt  time.Time `json:"placed_at"`
}

type PlaceOrderRequest struct {
	Customer     domain.CustomerInfo
	PromoCode    string
	PaymentToken string
}

type Service struct {
	orders    OrderRepository
	validator promo.Validator
	charger   Charger
	log       *logrus.Logger
	now       func() time.Time
}

func NewService(orders OrderRepository, validator promo.Validator, charger Charger, log *logrus.Logger) *Service {
	return &Service{
		orders:    orders,
		validator: validator,
		charger:   charger,
		log:       log,
		now:       time.Now,
	}
}

// PlaceOrder runs the checkout for one session's cart: price it, re-validate
// the promo code against the server rules, charge the card, record the order
// with its outbox event, then clear the cart. The promo code is always
// re-validated here even if the shopper validated it earlier in the session,
// so a code that expired mid-checkout cannot buy anything.
func (s *Service) PlaceOrder(ctx context.Context, store *cart.Store, req *PlaceOrderRequest) (*domain.Order, error) {
	items, err := store.Items(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	preDiscount := ComputeTotals(items, 0).PreDiscount()

	var discount float64
	var appliedCode string
	if strings.TrimSpace(req.PromoCode) != "" {
		app, err := s.validator.Validate(ctx, req.PromoCode, preDiscount)
		if err != nil {
			return nil, err
		}
		discount = app.DiscountAmount
		appliedCode = app.Code
	}

	totals := ComputeTotals(items, discount)
	now := s.now()
	order := &domain.Order{
		OrderID:   domain.NewOrderID(now),
		Customer:  req.Customer,
		Items:     toOrderItems(items),
		Subtotal:  totals.Subtotal,
		Shipping:  totals.Shipping,
		Tax:       totals.Tax,
		Discount:  totals.Discount,
		PromoCode: appliedCode,
		Total:     totals.Total,
		Status:    domain.OrderStatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}

	charge, err := s.charger.Charge(ctx, ChargeRequest{
		OrderID:      order.OrderID,
		Amount:       order.Total,
		Currency:     "USD",
		PaymentToken: req.PaymentToken,
	})
	if err != nil {
		return nil, &PaymentError{Err: err}
	}

	payload, err := json.Marshal(OrderPlacedPayload{
		OrderID:   order.OrderID,
		PromoCode: appliedCode,
		Email:     order.Customer.Email,
		Total:     order.Total,
		PlacedAt:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal order event payload: %w", err)
	}

	if err := s.orders.CreateWithEvent(ctx, order, EventOrderPlaced, payload); err != nil {
		// The charge went through but the order did not land. Keep the cart
		// so the shopper can retry, and leave a loud trail for support.
		s.log.WithFields(logrus.Fields{
			"order_id":   order.OrderID,
			"payment_id": charge.PaymentID,
			"error":      err,
		}).Error("order not recorded after successful charge")
		return nil, fmt.Errorf("record order: %w", err)
	}

	// Payment succeeded and the order is recorded; the cart is done. A
	// failed clear must not fail the order.
	if err := store.Clear(ctx); err != nil {
		s.log.WithFields(logrus.Fields{
			"order_id": order.OrderID,
			"error":    err,
		}).Warn("failed to clear cart after order placement")
	}

	s.log.WithFields(logrus.Fields{
		"order_id":   order.OrderID,
		"payment_id": charge.PaymentID,
		"total":      order.Total,
	}).Info("order placed")

	return order, nil
}

func toOrderItems(items domain.Cart) []domain.OrderItem {
	out := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		out = append(out, domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Size:      item.Size,
			Quantity:  item.Quantity,
			Image:     item.Image,
		})
	}
	return out
}

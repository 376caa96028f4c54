package consumer

import (
	"context"
	"encoding/json"

	"github.com/blastmusic247/blast-gear-full/internal/checkout"
	"github.com/blastmusic247/blast-gear-full/internal/promo"
	"github.com/blastmusic247/blast-gear-full/internal/publisher"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// OrderConsumer handles the follow-up work for placed orders: confirming
// promo usage with the promo subsystem and emitting the order notification.
// Everything here is best-effort; a failure is logged, never retried into
// the checkout path, and never blocks the order.
type OrderConsumer struct {
	reader    *kafka.Reader
	validator promo.Validator
	log       *logrus.Logger
}

func NewOrderConsumer(validator promo.Validator, log *logrus.Logger, brokers ...string) *OrderConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    publisher.Topic,
		GroupID:  "storefront-order-consumer",
		MaxBytes: 10e6, // 10MB
	})
	return &OrderConsumer{
		reader:    reader,
		validator: validator,
		log:       log,
	}
}

func (c *OrderConsumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.handleNextMessage(ctx)
	}
}

func (c *OrderConsumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.log.WithError(err).Warn("error closing kafka reader")
	}
}

func (c *OrderConsumer) handleNextMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() == nil {
			c.log.WithError(err).Error("error reading order event")
		}
		return
	}

	c.processMessage(ctx, m)
}

func (c *OrderConsumer) processMessage(ctx context.Context, m kafka.Message) {
	var payload checkout.OrderPlacedPayload
	if err := json.Unmarshal(m.Value, &payload); err != nil {
		c.log.WithError(err).Error("error parsing order event")
		return
	}

	if payload.PromoCode != "" {
		// At-least-once delivery means the counter can tick twice for one
		// order; acceptable for a usage gauge.
		if err := c.validator.ConfirmUsage(ctx, payload.PromoCode); err != nil {
			c.log.WithFields(logrus.Fields{
				"order_id": payload.OrderID,
				"code":     payload.PromoCode,
				"error":    err,
			}).Warn("failed to confirm promo usage")
		}
	}

	// Email delivery lives outside this service; the notification trail is
	// the log line.
	c.log.WithFields(logrus.Fields{
		"order_id": payload.OrderID,
		"email":    payload.Email,
		"total":    payload.Total,
	}).Info("order confirmation notification")
}

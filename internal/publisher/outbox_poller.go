package publisher

import (
	"context"
	"time"

	"github.com/blastmusic247/blast-gear-full/internal/orders"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const Topic = "order-placed"

// OutboxPoller drains the order outbox into Kafka. Publishing is at-least-
// once: an event published but not marked will go out again, and consumers
// must tolerate that.
type OutboxPoller struct {
	tick   time.Duration
	repo   *orders.Repository
	writer *kafka.Writer
	log    *logrus.Logger
}

func NewOutboxPoller(repo *orders.Repository, log *logrus.Logger, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &OutboxPoller{
		tick:   time.Second,
		repo:   repo,
		writer: w,
		log:    log,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) Close() {
	if err := p.writer.Close(); err != nil {
		p.log.WithError(err).Warn("error closing kafka writer")
	}
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.repo.GetUnpublishedEvents(ctx, 100)
	if err != nil {
		p.log.WithError(err).Error("failed to fetch outbox events")
		return
	}

	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			p.log.WithFields(logrus.Fields{
				"event_id": event.ID,
				"error":    err,
			}).Error("failed to publish outbox event")
			continue
		}

		if err := p.repo.MarkEventPublished(ctx, event.ID); err != nil {
			p.log.WithFields(logrus.Fields{
				"event_id": event.ID,
				"error":    err,
			}).Error("failed to mark outbox event published")
		}
	}
}

func (p *OutboxPoller) publish(ctx context.Context, event *orders.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.OrderID), // order_id for ordering
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}

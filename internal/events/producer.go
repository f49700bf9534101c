package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"ministry-shop/internal/domain"
)

const (
	TopicOrderCreated       = "orders.created"
	TopicOrderStatusChanged = "orders.status_changed"
)

// OrderCreatedEvent is emitted once per order written by checkout.
type OrderCreatedEvent struct {
	OrderID          uuid.UUID `json:"order_id"`
	OrderNumber      string    `json:"order_number"`
	ProfileID        uuid.UUID `json:"profile_id"`
	Total            int64     `json:"total"`
	PaymentReference string    `json:"payment_reference"`
	CreatedAt        time.Time `json:"created_at"`
}

// OrderStatusChangedEvent is emitted on admin status transitions.
type OrderStatusChangedEvent struct {
	OrderID   uuid.UUID `json:"order_id"`
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changed_at"`
}

// Producer publishes order events to Kafka. A nil Producer is valid and
// skips emission, so the broker stays optional in deployments without one.
// Publish failures are logged and never fail the request that triggered
// them.
type Producer struct {
	client *kgo.Client
	logger *zap.Logger
}

// NewProducer connects to the given brokers; an empty broker list returns a
// nil producer.
func NewProducer(brokers []string, logger *zap.Logger) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, err
	}

	return &Producer{client: client, logger: logger}, nil
}

// Close flushes and releases the Kafka client.
func (p *Producer) Close() {
	if p == nil {
		return
	}
	p.client.Close()
}

// OrderCreated publishes an order-created event keyed by order id.
func (p *Producer) OrderCreated(ctx context.Context, order *domain.Order) {
	if p == nil {
		return
	}
	p.publish(ctx, TopicOrderCreated, order.ID, OrderCreatedEvent{
		OrderID:          order.ID,
		OrderNumber:      order.OrderNumber,
		ProfileID:        order.ProfileID,
		Total:            order.Total,
		PaymentReference: order.PaymentReference,
		CreatedAt:        order.CreatedAt,
	})
}

// OrderStatusChanged publishes a status-change event keyed by order id.
func (p *Producer) OrderStatusChanged(ctx context.Context, orderID uuid.UUID, status string) {
	if p == nil {
		return
	}
	p.publish(ctx, TopicOrderStatusChanged, orderID, OrderStatusChangedEvent{
		OrderID:   orderID,
		Status:    status,
		ChangedAt: time.Now().UTC(),
	})
}

func (p *Producer) publish(ctx context.Context, topic string, key uuid.UUID, event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event", zap.String("topic", topic), zap.Error(err))
		return
	}

	record := &kgo.Record{
		Topic: topic,
		Key:   []byte(key.String()),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("Failed to produce event",
				zap.String("topic", topic),
				zap.String("key", key.String()),
				zap.Error(err),
			)
		}
	})
}

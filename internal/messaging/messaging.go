package messaging

import (
	"context"
	"time"

	"rental-engine-backend/internal/logger"

	"github.com/google/uuid"
)

const (
	EventOrderConfirmed = "order.confirmed"
	EventOrderReturned  = "order.returned"
	EventOrderOverdue   = "order.overdue"
)

// Publisher defines an interface for publishing events to a message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
}

// OrderEvent is the envelope for every order lifecycle event.
type OrderEvent struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	OrderID     int32     `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	OccurredAt  time.Time `json:"occurred_at"`
	Payload     any       `json:"payload,omitempty"`
}

func NewOrderEvent(eventType string, orderID int32, orderNumber string, payload any) OrderEvent {
	return OrderEvent{
		EventID:     uuid.NewString(),
		EventType:   eventType,
		OrderID:     orderID,
		OrderNumber: orderNumber,
		OccurredAt:  time.Now().UTC(),
		Payload:     payload,
	}
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that only logs, used when no brokers are configured.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	logger.Debug("Event publishing disabled, dropping event", "topic", topic, "key", key)
	return nil
}

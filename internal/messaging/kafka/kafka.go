package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/messaging"

	kafkaGo "github.com/segmentio/kafka-go"
)

type Publisher struct {
	writer *kafkaGo.Writer
}

// NewPublisher creates a Kafka publisher sharing one writer across topics.
// Messages are hashed by key so events of one order keep their order.
func NewPublisher(brokers []string) *Publisher {
	return &Publisher{
		writer: &kafkaGo.Writer{
			Addr:                   kafkaGo.TCP(brokers...),
			Balancer:               &kafkaGo.Hash{},
			AllowAutoTopicCreation: true,
		},
	}
}

var _ messaging.Publisher = (*Publisher)(nil)

func (p *Publisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	logger.ExternalServiceCall("Kafka", "WriteMessages", "topic", topic, "key", key)
	err = p.writer.WriteMessages(ctx, kafkaGo.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	})
	logger.ExternalServiceResult("Kafka", "WriteMessages", err, "topic", topic)
	return err
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublisher_PublishEvent_MarshalError(t *testing.T) {
	p := NewPublisher([]string{"localhost:9092"})
	defer p.Close()

	err := p.PublishEvent(context.Background(), "rental.orders", "ORD-2026-0001", map[string]any{"bad": make(chan int)})
	assert.ErrorContains(t, err, "failed to marshal event")
}

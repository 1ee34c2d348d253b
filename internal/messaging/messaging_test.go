package messaging

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderEvent(t *testing.T) {
	a := NewOrderEvent(EventOrderReturned, 4, "ORD-2026-0004", map[string]any{"late_days": 2})
	b := NewOrderEvent(EventOrderReturned, 4, "ORD-2026-0004", nil)

	_, err := uuid.Parse(a.EventID)
	require.NoError(t, err)
	assert.NotEqual(t, a.EventID, b.EventID)
	assert.False(t, a.OccurredAt.IsZero())

	raw, err := json.Marshal(a)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "order.returned", decoded["event_type"])
	assert.Equal(t, "ORD-2026-0004", decoded["order_number"])
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NewNoopPublisher().PublishEvent(context.Background(), "rental.orders", "k", struct{}{}))
}

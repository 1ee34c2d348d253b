package service

import (
	"context"
	"testing"

	"rental-engine-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickupService(t *testing.T) {
	ctx := context.Background()

	t.Run("ReadyThenComplete", func(t *testing.T) {
		env := newTestEnv(t, day(1))
		tent := env.product(t, "Tent", 3)
		res := env.confirm(t, env.quotation(t, day(1), day(3), rentalLine(tent.ID, 1, 20)))

		ready, err := env.pickups.MarkReady(ctx, res.OrderID)
		require.NoError(t, err)
		assert.Equal(t, domain.PickupStatusReady, ready.Status)
		require.NotNil(t, ready.ReadyAt)

		again, err := env.pickups.MarkReady(ctx, res.OrderID)
		require.NoError(t, err)
		assert.Equal(t, ready.ReadyAt, again.ReadyAt)

		done, err := env.pickups.CompletePickup(ctx, res.OrderID)
		require.NoError(t, err)
		assert.Equal(t, domain.PickupStatusCompleted, done.Status)
		require.NotNil(t, done.CompletedAt)

		order, err := env.store.Orders.GetByID(ctx, res.OrderID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusPickedUp, order.Status)

		_, err = env.pickups.CompletePickup(ctx, res.OrderID)
		var invalid *domain.InvalidStateError
		assert.ErrorAs(t, err, &invalid)

		_, err = env.pickups.MarkReady(ctx, res.OrderID)
		assert.ErrorAs(t, err, &invalid)
	})

	t.Run("CompleteWithoutReady", func(t *testing.T) {
		env := newTestEnv(t, day(1))
		tent := env.product(t, "Tent", 3)
		res := env.confirm(t, env.quotation(t, day(1), day(3), rentalLine(tent.ID, 1, 20)))

		done, err := env.pickups.CompletePickup(ctx, res.OrderID)
		require.NoError(t, err)
		assert.NotNil(t, done.ReadyAt)
	})

	t.Run("OverdueStaysOverdue", func(t *testing.T) {
		env := newTestEnv(t, day(5))
		tent := env.product(t, "Tent", 3)
		res := env.confirm(t, env.quotation(t, day(1), day(3), rentalLine(tent.ID, 1, 20)))
		_, err := env.lifecycle.RunSweepAt(ctx, day(5))
		require.NoError(t, err)

		_, err = env.pickups.CompletePickup(ctx, res.OrderID)
		require.NoError(t, err)

		order, err := env.store.Orders.GetByID(ctx, res.OrderID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusOverdue, order.Status)
	})

	t.Run("SaleOnlyHasNoPickup", func(t *testing.T) {
		env := newTestEnv(t, day(1))
		rope := env.product(t, "Rope", 3)
		res := env.confirm(t, env.quotation(t, day(1), day(1), saleLine(rope.ID, 1, 5)))

		_, err := env.pickups.MarkReady(ctx, res.OrderID)
		assert.True(t, domain.IsNotFound(err))
	})
}

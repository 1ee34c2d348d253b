package service

import (
	"context"
	"testing"
	"time"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/messaging"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReturnService_ProcessReturn(t *testing.T) {
	ctx := context.Background()

	t.Run("LateReturn", func(t *testing.T) {
		env := newTestEnv(t, day(9))
		tent := env.product(t, "Tent", 3)
		res := env.confirm(t, env.quotation(t, day(0), day(6), rentalLine(tent.ID, 1, 700)))

		ret, err := env.returns.ProcessReturn(ctx, ReturnRequest{OrderID: res.OrderID})
		require.NoError(t, err)
		assert.Equal(t, day(9), ret.ReturnDate)
		assert.Equal(t, int32(3), ret.LateDays)
		assert.True(t, decimal.NewFromInt(30).Equal(ret.LateFee), "late fee %s", ret.LateFee)
		assert.True(t, ret.DamageFee.IsZero())
		assert.Equal(t, []domain.ReturnItem{{ProductID: tent.ID, Quantity: 1, Condition: domain.ItemConditionGood}}, ret.Items)

		details, err := env.orders.GetOrder(ctx, res.OrderID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusReturned, details.Order.Status)
		require.NotNil(t, details.Return)
		assert.Equal(t, domain.PickupStatusCompleted, details.Pickup.Status)

		active, err := env.store.Reservations.ListActiveOverlapping(ctx, tent.ID, day(0), day(6))
		require.NoError(t, err)
		assert.Empty(t, active)

		movements, err := env.store.StockMovements.ListByReference(ctx, res.OrderID)
		require.NoError(t, err)
		require.Len(t, movements, 2)
		assert.Equal(t, domain.MovementTypeReturn, movements[1].MovementType)
		assert.Equal(t, int32(1), movements[1].Quantity)

		env.publisher.AssertCalled(t, "PublishEvent", mock.Anything, testTopic, res.OrderNumber,
			mock.MatchedBy(func(e messaging.OrderEvent) bool { return e.EventType == messaging.EventOrderReturned }))
	})

	t.Run("OnTimeWithDamage", func(t *testing.T) {
		env := newTestEnv(t, day(2))
		tent := env.product(t, "Tent", 3)
		stove := env.product(t, "Stove", 3)
		res := env.confirm(t, env.quotation(t, day(0), day(3), rentalLine(tent.ID, 2, 20), rentalLine(stove.ID, 1, 10)))

		fee := decimal.RequireFromString("12.50")
		ret, err := env.returns.ProcessReturn(ctx, ReturnRequest{
			OrderID: res.OrderID,
			Items: []ReturnItemInput{
				{ProductID: tent.ID, Quantity: 1},
				{ProductID: tent.ID, Quantity: 1, Condition: domain.ItemConditionDamaged},
				{ProductID: stove.ID, Quantity: 1},
			},
			DamageFee: &fee,
			Notes:     "torn fly sheet",
		})
		require.NoError(t, err)
		assert.Zero(t, ret.LateDays)
		assert.True(t, ret.LateFee.IsZero())
		assert.True(t, fee.Equal(ret.DamageFee))
		assert.Len(t, ret.Items, 3)
		assert.Equal(t, domain.ItemConditionDamaged, ret.Items[1].Condition)
	})

	t.Run("FreesStockForNextRental", func(t *testing.T) {
		env := newTestEnv(t, day(1))
		kayak := env.product(t, "Kayak", 1)
		first := env.confirm(t, env.quotation(t, day(1), day(5), rentalLine(kayak.ID, 1, 40)))

		_, err := env.orders.ConfirmQuotation(ctx, ConfirmRequest{QuotationID: env.quotation(t, day(3), day(4), rentalLine(kayak.ID, 1, 40)).ID})
		var shortfall *domain.InsufficientStockError
		require.ErrorAs(t, err, &shortfall)

		_, err = env.returns.ProcessReturn(ctx, ReturnRequest{OrderID: first.OrderID})
		require.NoError(t, err)

		res := env.confirm(t, env.quotation(t, day(3), day(4), rentalLine(kayak.ID, 1, 40)))
		assert.NotZero(t, res.OrderID)
	})

	t.Run("PartialReturn", func(t *testing.T) {
		env := newTestEnv(t, day(2))
		kayak := env.product(t, "Kayak", 3)
		res := env.confirm(t, env.quotation(t, day(0), day(3), rentalLine(kayak.ID, 3, 40)))

		ret, err := env.returns.ProcessReturn(ctx, ReturnRequest{
			OrderID: res.OrderID,
			Items:   []ReturnItemInput{{ProductID: kayak.ID, Quantity: 1}},
		})
		require.NoError(t, err)
		assert.Len(t, ret.Items, 1)

		got, err := env.store.Products.GetByID(ctx, kayak.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(1), got.QuantityOnHand)

		movements, err := env.store.StockMovements.ListByReference(ctx, res.OrderID)
		require.NoError(t, err)
		require.Len(t, movements, 3)
		assert.Equal(t, domain.MovementTypeReturn, movements[1].MovementType)
		assert.Equal(t, int32(1), movements[1].Quantity)
		assert.Equal(t, domain.MovementTypeWriteOff, movements[2].MovementType)
		assert.Equal(t, int32(-2), movements[2].Quantity)

		_, err = env.orders.ConfirmQuotation(ctx, ConfirmRequest{QuotationID: env.quotation(t, day(4), day(6), rentalLine(kayak.ID, 3, 40)).ID})
		var stock *domain.InsufficientStockError
		require.ErrorAs(t, err, &stock)
		assert.Equal(t, int32(1), stock.Available)

		next := env.confirm(t, env.quotation(t, day(4), day(6), rentalLine(kayak.ID, 1, 40)))
		assert.NotZero(t, next.OrderID)
	})

	t.Run("AlreadyReturned", func(t *testing.T) {
		env := newTestEnv(t, day(2))
		tent := env.product(t, "Tent", 3)
		res := env.confirm(t, env.quotation(t, day(0), day(3), rentalLine(tent.ID, 1, 20)))
		_, err := env.returns.ProcessReturn(ctx, ReturnRequest{OrderID: res.OrderID})
		require.NoError(t, err)

		_, err = env.returns.ProcessReturn(ctx, ReturnRequest{OrderID: res.OrderID})
		var invalid *domain.InvalidStateError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "already returned", invalid.Reason)
	})

	t.Run("SaleOnlyOrder", func(t *testing.T) {
		env := newTestEnv(t, day(2))
		rope := env.product(t, "Rope", 3)
		res := env.confirm(t, env.quotation(t, time.Time{}, time.Time{}, saleLine(rope.ID, 1, 5)))

		_, err := env.returns.ProcessReturn(ctx, ReturnRequest{OrderID: res.OrderID})
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("InvalidItems", func(t *testing.T) {
		env := newTestEnv(t, day(2))
		tent := env.product(t, "Tent", 3)
		rope := env.product(t, "Rope", 3)
		res := env.confirm(t, env.quotation(t, day(0), day(3), rentalLine(tent.ID, 2, 20), saleLine(rope.ID, 1, 5)))

		tests := []struct {
			name  string
			items []ReturnItemInput
		}{
			{"SoldProduct", []ReturnItemInput{{ProductID: rope.ID, Quantity: 1}}},
			{"UnknownProduct", []ReturnItemInput{{ProductID: 999, Quantity: 1}}},
			{"ZeroQuantity", []ReturnItemInput{{ProductID: tent.ID, Quantity: 0}}},
			{"TooMany", []ReturnItemInput{{ProductID: tent.ID, Quantity: 2}, {ProductID: tent.ID, Quantity: 1}}},
			{"BadCondition", []ReturnItemInput{{ProductID: tent.ID, Quantity: 1, Condition: "LOST"}}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := env.returns.ProcessReturn(ctx, ReturnRequest{OrderID: res.OrderID, Items: tt.items})
				var verr *domain.ValidationError
				require.ErrorAs(t, err, &verr)
			})
		}

		order, err := env.store.Orders.GetByID(ctx, res.OrderID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
	})

	t.Run("NegativeDamageFee", func(t *testing.T) {
		env := newTestEnv(t, day(2))
		tent := env.product(t, "Tent", 3)
		res := env.confirm(t, env.quotation(t, day(0), day(3), rentalLine(tent.ID, 1, 20)))

		fee := decimal.NewFromInt(-1)
		_, err := env.returns.ProcessReturn(ctx, ReturnRequest{OrderID: res.OrderID, DamageFee: &fee})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "damage_fee", verr.Field)
	})

	t.Run("ReturnBeforeStart", func(t *testing.T) {
		env := newTestEnv(t, day(0))
		tent := env.product(t, "Tent", 3)
		res := env.confirm(t, env.quotation(t, day(2), day(3), rentalLine(tent.ID, 1, 20)))

		_, err := env.returns.ProcessReturn(ctx, ReturnRequest{OrderID: res.OrderID})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "return_date", verr.Field)
	})

	t.Run("UnknownOrder", func(t *testing.T) {
		env := newTestEnv(t, day(0))
		_, err := env.returns.ProcessReturn(ctx, ReturnRequest{OrderID: 42})
		assert.True(t, domain.IsNotFound(err))
	})
}

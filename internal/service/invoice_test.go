package service

import (
	"context"
	"testing"

	"rental-engine-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceService_GetOrCreateInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("ReturnsEagerInvoice", func(t *testing.T) {
		env := newTestEnv(t, day(1))
		tent := env.product(t, "Tent", 3)
		res := env.confirm(t, env.quotation(t, day(1), day(3), rentalLine(tent.ID, 1, 20)))

		inv, err := env.invoices.GetOrCreateInvoice(ctx, res.OrderID)
		require.NoError(t, err)
		assert.Equal(t, "INV-2026-0001", inv.InvoiceNumber)
	})

	t.Run("CreatesMissingInvoice", func(t *testing.T) {
		env := newTestEnv(t, day(1))
		order := &domain.Order{
			OrderNumber: "ORD-2025-0009",
			QuotationID: 77,
			CustomerID:  env.customer.ID,
			Status:      domain.OrderStatusConfirmed,
			Subtotal:    decimal.NewFromInt(100),
			TotalAmount: decimal.NewFromInt(100),
			AmountPaid:  decimal.NewFromInt(40),
		}
		require.NoError(t, env.store.Orders.Create(ctx, order))

		inv, err := env.invoices.GetOrCreateInvoice(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "INV-2026-0001", inv.InvoiceNumber)
		assert.Equal(t, domain.InvoiceStatusPartial, inv.Status)

		again, err := env.invoices.GetOrCreateInvoice(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, inv.ID, again.ID)
	})

	t.Run("UnknownOrder", func(t *testing.T) {
		env := newTestEnv(t, day(1))
		_, err := env.invoices.GetOrCreateInvoice(ctx, 5)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestNotificationService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, day(1))
	svc := NewNotificationService(env.store.Notifications)

	for i := 0; i < 25; i++ {
		_, err := env.notifier.Notify(ctx, &domain.Notification{
			UserID:      env.customer.ID,
			Type:        domain.NotificationTypeReturnReminder,
			ReferenceID: int32(i + 1),
			DateBucket:  day(1),
			Title:       "Return Reminder",
		})
		require.NoError(t, err)
	}

	page, total, err := svc.GetNotifications(ctx, env.customer.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(25), total)
	assert.Len(t, page, 20)

	rest, _, err := svc.GetNotifications(ctx, env.customer.ID, 2, 20)
	require.NoError(t, err)
	assert.Len(t, rest, 5)

	require.NoError(t, svc.MarkAsRead(ctx, env.customer.ID, page[0].ID))
	assert.True(t, domain.IsNotFound(svc.MarkAsRead(ctx, env.vendor.ID, page[0].ID)))
}

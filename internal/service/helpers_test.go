package service

import (
	"context"
	"testing"
	"time"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/repository/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testTopic = "rental.orders"

var day0 = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return day0.AddDate(0, 0, n)
}

type testEnv struct {
	store     *memory.Store
	emailSvc  *MockEmailService
	publisher *MockPublisher
	notifier  *Notifier

	orders    *orderService
	pickups   *pickupService
	returns   *returnService
	invoices  *invoiceService
	lifecycle *lifecycleService

	customer *domain.User
	vendor   *domain.User
}

// newTestEnv wires every service to one memory store with the clock fixed at
// the given instant. Email and publish calls succeed unless a test says otherwise.
func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	emailSvc := new(MockEmailService)
	emailSvc.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	publisher := new(MockPublisher)
	publisher.On("PublishEvent", mock.Anything, testTopic, mock.Anything, mock.Anything).Return(nil).Maybe()

	notifier := NewNotifier(store.Repos(), emailSvc, publisher, testTopic)
	clock := func() time.Time { return now }

	env := &testEnv{
		store:     store,
		emailSvc:  emailSvc,
		publisher: publisher,
		notifier:  notifier,
		orders:    &orderService{store: store, notifier: notifier, now: clock},
		pickups:   &pickupService{store: store, now: clock},
		returns:   &returnService{store: store, notifier: notifier, now: clock},
		invoices:  &invoiceService{store: store, now: clock},
		lifecycle: &lifecycleService{store: store, notifier: notifier, now: clock},
		customer:  &domain.User{Email: "customer@test.com", Name: "Customer"},
		vendor:    &domain.User{Email: "vendor@test.com", Name: "Vendor"},
	}
	require.NoError(t, store.Users.Create(ctx, env.customer))
	require.NoError(t, store.Users.Create(ctx, env.vendor))
	return env
}

func (e *testEnv) product(t *testing.T, name string, onHand int32) *domain.Product {
	t.Helper()
	p := &domain.Product{VendorID: e.vendor.ID, Name: name, QuantityOnHand: onHand, SalePrice: decimal.NewFromInt(50)}
	require.NoError(t, e.store.Products.Create(context.Background(), p))
	return p
}

func rentalLine(productID, qty int32, unit int64) domain.QuotationLine {
	return domain.QuotationLine{
		ProductID: productID,
		Quantity:  qty,
		Type:      domain.LineTypeRental,
		UnitPrice: decimal.NewFromInt(unit),
		LineTotal: decimal.NewFromInt(unit * int64(qty)),
	}
}

func saleLine(productID, qty int32, unit int64) domain.QuotationLine {
	l := rentalLine(productID, qty, unit)
	l.Type = domain.LineTypeSale
	return l
}

// quotation stores a DRAFT quotation whose subtotal is the sum of its lines.
func (e *testEnv) quotation(t *testing.T, from, to time.Time, lines ...domain.QuotationLine) *domain.Quotation {
	t.Helper()
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal)
	}
	q := &domain.Quotation{
		CustomerID:  e.customer.ID,
		Lines:       lines,
		RentalStart: from,
		RentalEnd:   to,
		Subtotal:    subtotal,
		TotalAmount: subtotal,
	}
	require.NoError(t, e.store.Quotations.Create(context.Background(), q))
	return q
}

func (e *testEnv) confirm(t *testing.T, q *domain.Quotation) *ConfirmResult {
	t.Helper()
	res, err := e.orders.ConfirmQuotation(context.Background(), ConfirmRequest{QuotationID: q.ID, PaymentReference: "pay_test"})
	require.NoError(t, err)
	return res
}

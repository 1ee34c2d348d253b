package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/repository/memory"
	"rental-engine-backend/internal/security"
	"rental-engine-backend/internal/service"
	"rental-engine-backend/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type nopEmail struct{}

func (nopEmail) Send(ctx context.Context, to, subject, html string) error { return nil }

type apiFixture struct {
	router   http.Handler
	store    *memory.Store
	token    string
	customer *domain.User
	product  *domain.Product
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	notifier := service.NewNotifier(store.Repos(), nopEmail{}, nil, "rental.orders")

	h := NewHandler(&Services{
		Orders:        service.NewOrderService(store, notifier),
		Pickups:       service.NewPickupService(store),
		Returns:       service.NewReturnService(store, notifier),
		Invoices:      service.NewInvoiceService(store),
		Lifecycle:     service.NewLifecycleService(store, notifier),
		Notifications: service.NewNotificationService(store.Notifications),
		Ledger:        service.NewInventoryLedger(store.Products, store.Reservations),
	})
	tm := security.NewTokenManager(testSecret, time.Hour)

	customer := &domain.User{Email: "customer@test.com", Name: "Customer"}
	require.NoError(t, store.Users.Create(ctx, customer))
	vendor := &domain.User{Email: "vendor@test.com", Name: "Vendor"}
	require.NoError(t, store.Users.Create(ctx, vendor))
	product := &domain.Product{VendorID: vendor.ID, Name: "Kayak", QuantityOnHand: 1}
	require.NoError(t, store.Products.Create(ctx, product))

	token, err := tm.GenerateAccessToken(customer.ID, customer.Email, nil)
	require.NoError(t, err)

	return &apiFixture{router: NewRouter(h, tm), store: store, token: token, customer: customer, product: product}
}

func (f *apiFixture) quotation(t *testing.T, from, to time.Time) *domain.Quotation {
	t.Helper()
	q := &domain.Quotation{
		CustomerID:  f.customer.ID,
		RentalStart: from,
		RentalEnd:   to,
		Subtotal:    decimal.NewFromInt(120),
		TotalAmount: decimal.NewFromInt(120),
		Lines: []domain.QuotationLine{{
			ProductID: f.product.ID,
			Quantity:  1,
			Type:      domain.LineTypeRental,
			UnitPrice: decimal.NewFromInt(120),
			LineTotal: decimal.NewFromInt(120),
		}},
	}
	require.NoError(t, f.store.Quotations.Create(context.Background(), q))
	return q
}

func (f *apiFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+f.token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestRouter_Auth(t *testing.T) {
	f := newAPIFixture(t)

	t.Run("HealthIsPublic", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("MissingToken", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/1", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("BadToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/1", nil)
		req.Header.Set("Authorization", "Bearer junk")
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandler_OrderFlow(t *testing.T) {
	f := newAPIFixture(t)
	today := utils.DateOnly(time.Now())
	f.quotation(t, today, today.AddDate(0, 0, 2))

	rec := f.do(t, http.MethodGet, "/api/v1/quotations/1/availability", "")
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[service.AvailabilityReport](t, rec)
	assert.True(t, report.Available)

	rec = f.do(t, http.MethodPost, "/api/v1/quotations/1/confirm", `{"payment_reference":"pay_1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	confirmed := decode[service.ConfirmResult](t, rec)
	assert.Equal(t, int32(1), confirmed.OrderID)

	rec = f.do(t, http.MethodPost, "/api/v1/quotations/1/confirm", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[service.ConfirmResult](t, rec).AlreadyConfirmed)

	rec = f.do(t, http.MethodGet, "/api/v1/products/1/availability?from="+utils.FormatDate(today)+"&to="+utils.FormatDate(today), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode[map[string]any](t, rec)["available"])

	f.quotation(t, today.AddDate(0, 0, 1), today.AddDate(0, 0, 3))
	rec = f.do(t, http.MethodPost, "/api/v1/quotations/2/confirm", "{}")
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode[errorResponse](t, rec)
	require.NotNil(t, body.Shortfall)
	assert.Equal(t, f.product.ID, body.Shortfall.ProductID)
	assert.Equal(t, int32(0), body.Shortfall.Available)

	rec = f.do(t, http.MethodPost, "/api/v1/orders/1/pickup/ready", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/v1/orders/1/pickup/complete", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/v1/orders/1/pickup/complete", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/orders/1/invoice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[domain.Invoice](t, rec).InvoiceNumber)

	rec = f.do(t, http.MethodPost, "/api/v1/orders/1/return", `{"damage_fee":"5.00","notes":"scratched hull"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ret := decode[domain.Return](t, rec)
	require.NotNil(t, ret.ProcessedBy)
	assert.Equal(t, f.customer.ID, *ret.ProcessedBy)
	assert.True(t, decimal.NewFromInt(5).Equal(ret.DamageFee))

	rec = f.do(t, http.MethodPost, "/api/v1/orders/1/return", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/orders/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	details := decode[domain.OrderDetails](t, rec)
	assert.Equal(t, confirmed.OrderNumber, details.Order.OrderNumber)
	assert.Equal(t, domain.OrderStatusReturned, details.Order.Status)
}

func TestHandler_Errors(t *testing.T) {
	f := newAPIFixture(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"UnknownOrder", http.MethodGet, "/api/v1/orders/99", "", http.StatusNotFound},
		{"BadID", http.MethodGet, "/api/v1/orders/abc", "", http.StatusBadRequest},
		{"BadDate", http.MethodGet, "/api/v1/products/1/availability?from=tomorrow&to=2026-01-01", "", http.StatusBadRequest},
		{"InvertedWindow", http.MethodGet, "/api/v1/products/1/availability?from=2026-01-05&to=2026-01-01", "", http.StatusBadRequest},
		{"BadJSON", http.MethodPost, "/api/v1/quotations/1/confirm", "{", http.StatusBadRequest},
		{"BadReturnDate", http.MethodPost, "/api/v1/orders/1/return", `{"return_date":"01/02/2026"}`, http.StatusBadRequest},
		{"BadSweepDate", http.MethodPost, "/api/v1/jobs/lifecycle-sweep?date=yesterday", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestHandler_SweepAndNotifications(t *testing.T) {
	f := newAPIFixture(t)
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	f.quotation(t, start, start.AddDate(0, 0, 2))
	rec := f.do(t, http.MethodPost, "/api/v1/quotations/1/confirm", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/jobs/lifecycle-sweep?date=2026-05-05", "")
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[domain.SweepSummary](t, rec)
	assert.Equal(t, 1, summary.OrdersMarkedOverdue)
	assert.Equal(t, 1, summary.OverdueAlertsSent)

	rec = f.do(t, http.MethodGet, "/api/v1/notifications?page=1&page_size=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Notifications []domain.Notification `json:"notifications"`
		Total         int32                 `json:"total"`
	}](t, rec)
	assert.Equal(t, int32(2), list.Total)
	assert.Equal(t, domain.NotificationTypeOverdueAlert, list.Notifications[0].Type)

	rec = f.do(t, http.MethodPost, "/api/v1/notifications/"+itoa(list.Notifications[0].ID)+"/read", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/v1/notifications/999/read", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func itoa(id int32) string {
	return strconv.Itoa(int(id))
}

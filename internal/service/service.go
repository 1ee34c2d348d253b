package service

import (
	"context"
	"time"

	"rental-engine-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type OrderService interface {
	// CheckAvailability runs the planner outside any transaction. The answer is
	// advisory; ConfirmQuotation re-checks under locks.
	CheckAvailability(ctx context.Context, quotationID int32) (*AvailabilityReport, error)
	ConfirmQuotation(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error)
	GetOrder(ctx context.Context, orderID int32) (*domain.OrderDetails, error)
}

type PickupService interface {
	MarkReady(ctx context.Context, orderID int32) (*domain.Pickup, error)
	CompletePickup(ctx context.Context, orderID int32) (*domain.Pickup, error)
}

type ReturnService interface {
	ProcessReturn(ctx context.Context, req ReturnRequest) (*domain.Return, error)
}

type InvoiceService interface {
	GetOrCreateInvoice(ctx context.Context, orderID int32) (*domain.Invoice, error)
}

type LifecycleService interface {
	RunSweep(ctx context.Context) (*domain.SweepSummary, error)
	RunSweepAt(ctx context.Context, today time.Time) (*domain.SweepSummary, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

type EmailService interface {
	Send(ctx context.Context, to, subject, html string) error
}

type AvailabilityReport struct {
	QuotationID int32                          `json:"quotation_id"`
	Available   bool                           `json:"available"`
	Shortfall   *domain.InsufficientStockError `json:"shortfall,omitempty"`
}

type ConfirmRequest struct {
	QuotationID      int32  `json:"quotation_id"`
	AddressID        *int32 `json:"address_id,omitempty"`
	PaymentReference string `json:"payment_reference"`
}

type ConfirmResult struct {
	OrderID          int32  `json:"order_id"`
	OrderNumber      string `json:"order_number"`
	AlreadyConfirmed bool   `json:"already_confirmed"`
}

type ReturnItemInput struct {
	ProductID int32                `json:"product_id"`
	Quantity  int32                `json:"quantity"`
	Condition domain.ItemCondition `json:"condition"`
}

type ReturnRequest struct {
	OrderID     int32             `json:"order_id"`
	Items       []ReturnItemInput `json:"items"`
	DamageFee   *decimal.Decimal  `json:"damage_fee,omitempty"`
	ReturnDate  *time.Time        `json:"return_date,omitempty"`
	Notes       string            `json:"notes"`
	ProcessedBy *int32            `json:"processed_by,omitempty"`
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusPickedUp  OrderStatus = "PICKED_UP"
	OrderStatusReturned  OrderStatus = "RETURNED"
	OrderStatusOverdue   OrderStatus = "OVERDUE"
)

// Returnable reports whether an order in this status can still be closed out by a return.
func (s OrderStatus) Returnable() bool {
	return s == OrderStatusConfirmed || s == OrderStatusPickedUp || s == OrderStatusOverdue
}

// Order is the binding commitment created from exactly one quotation.
type Order struct {
	ID               int32           `json:"id"`
	OrderNumber      string          `json:"order_number"`
	QuotationID      int32           `json:"quotation_id"`
	CustomerID       int32           `json:"customer_id"`
	AddressID        int32           `json:"address_id"`
	Status           OrderStatus     `json:"status"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	RentalStart      time.Time       `json:"rental_start"`
	RentalEnd        time.Time       `json:"rental_end"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	CreatedOn        time.Time       `json:"created_on"`
	UpdatedOn        time.Time       `json:"updated_on"`
}

// OrderLine is an immutable copy of a quotation line.
type OrderLine struct {
	ID        int32           `json:"id"`
	OrderID   int32           `json:"order_id"`
	ProductID int32           `json:"product_id"`
	Quantity  int32           `json:"quantity"`
	Type      LineType        `json:"type"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderDetails is the read-side projection handed to UI/reporting callers.
type OrderDetails struct {
	Order   *Order      `json:"order"`
	Lines   []OrderLine `json:"lines"`
	Invoice *Invoice    `json:"invoice,omitempty"`
	Pickup  *Pickup     `json:"pickup,omitempty"`
	Return  *Return     `json:"return,omitempty"`
}

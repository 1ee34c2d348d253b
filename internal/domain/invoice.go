package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "DRAFT"
	InvoiceStatusPartial InvoiceStatus = "PARTIAL"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
)

// InvoiceStatusFor derives the invoice status from the amount paid against the total.
func InvoiceStatusFor(amountPaid, total decimal.Decimal) InvoiceStatus {
	switch {
	case amountPaid.GreaterThanOrEqual(total):
		return InvoiceStatusPaid
	case amountPaid.IsPositive():
		return InvoiceStatusPartial
	default:
		return InvoiceStatusDraft
	}
}

type Invoice struct {
	ID             int32           `json:"id"`
	InvoiceNumber  string          `json:"invoice_number"`
	OrderID        int32           `json:"order_id"`
	CustomerID     int32           `json:"customer_id"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	Status         InvoiceStatus   `json:"status"`
	IssuedOn       time.Time       `json:"issued_on"`
}

// NewInvoiceForOrder snapshots the order totals into a new invoice.
func NewInvoiceForOrder(o *Order, number string, issuedOn time.Time) *Invoice {
	return &Invoice{
		InvoiceNumber:  number,
		OrderID:        o.ID,
		CustomerID:     o.CustomerID,
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		TaxAmount:      o.TaxAmount,
		TotalAmount:    o.TotalAmount,
		AmountPaid:     o.AmountPaid,
		Status:         InvoiceStatusFor(o.AmountPaid, o.TotalAmount),
		IssuedOn:       issuedOn,
	}
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type QuotationStatus string

const (
	QuotationStatusDraft     QuotationStatus = "DRAFT"
	QuotationStatusConfirmed QuotationStatus = "CONFIRMED"
)

type LineType string

const (
	LineTypeRental LineType = "RENTAL"
	LineTypeSale   LineType = "SALE"
)

func (t LineType) Valid() bool {
	return t == LineTypeRental || t == LineTypeSale
}

type QuotationLine struct {
	ID          int32           `json:"id"`
	QuotationID int32           `json:"quotation_id"`
	ProductID   int32           `json:"product_id"`
	Quantity    int32           `json:"quantity"`
	Type        LineType        `json:"type"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Quotation is a priced cart snapshot. The rental window is shared by every
// RENTAL line; SALE-only quotations may leave it zero.
type Quotation struct {
	ID             int32           `json:"id"`
	CustomerID     int32           `json:"customer_id"`
	Lines          []QuotationLine `json:"lines"`
	RentalStart    time.Time       `json:"rental_start"`
	RentalEnd      time.Time       `json:"rental_end"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Status         QuotationStatus `json:"status"`
	OrderID        *int32          `json:"order_id,omitempty"`
	CreatedOn      time.Time       `json:"created_on"`
	UpdatedOn      time.Time       `json:"updated_on"`
}

// IsConfirmed reports whether the quotation has already been turned into an order.
func (q *Quotation) IsConfirmed() bool {
	return q.Status == QuotationStatusConfirmed || q.OrderID != nil
}

func (q *Quotation) HasRentalLines() bool {
	for _, l := range q.Lines {
		if l.Type == LineTypeRental {
			return true
		}
	}
	return false
}

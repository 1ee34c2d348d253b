package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ItemCondition string

const (
	ItemConditionGood    ItemCondition = "GOOD"
	ItemConditionDamaged ItemCondition = "DAMAGED"
)

func (c ItemCondition) Valid() bool {
	return c == ItemConditionGood || c == ItemConditionDamaged
}

type ReturnItem struct {
	ProductID int32         `json:"product_id"`
	Quantity  int32         `json:"quantity"`
	Condition ItemCondition `json:"condition"`
}

// Return closes out a rental order. There is at most one per order.
type Return struct {
	ID          int32           `json:"id"`
	OrderID     int32           `json:"order_id"`
	ReturnDate  time.Time       `json:"return_date"`
	LateDays    int32           `json:"late_days"`
	LateFee     decimal.Decimal `json:"late_fee"`
	DamageFee   decimal.Decimal `json:"damage_fee"`
	Items       []ReturnItem    `json:"items"`
	Notes       string          `json:"notes,omitempty"`
	ProcessedBy *int32          `json:"processed_by,omitempty"`
	CreatedOn   time.Time       `json:"created_on"`
}

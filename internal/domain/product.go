package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID             int32           `json:"id"`
	VendorID       int32           `json:"vendor_id"`
	Name           string          `json:"name"`
	QuantityOnHand int32           `json:"quantity_on_hand"`
	SalePrice      decimal.Decimal `json:"sale_price"`
	CostPrice      decimal.Decimal `json:"cost_price"`
}

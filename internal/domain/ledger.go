package domain

import "time"

type MovementType string

const (
	MovementTypePickup        MovementType = "PICKUP"
	MovementTypeReturn        MovementType = "RETURN"
	MovementTypeSaleDecrement MovementType = "SALE_DECREMENT"
	// MovementTypeWriteOff removes rented units that were never returned.
	MovementTypeWriteOff MovementType = "WRITE_OFF"
)

// StockMovement is an append-only audit entry. Quantity is negative for
// outbound transfers and positive for units coming back.
type StockMovement struct {
	ID           int32        `json:"id"`
	ProductID    int32        `json:"product_id"`
	Quantity     int32        `json:"quantity"`
	MovementType MovementType `json:"movement_type"`
	ReferenceID  int32        `json:"reference_id"` // order id
	Note         string       `json:"note"`
	CreatedOn    time.Time    `json:"created_on"`
}

package domain

import "time"

type PickupStatus string

const (
	PickupStatusPending   PickupStatus = "PENDING"
	PickupStatusReady     PickupStatus = "READY"
	PickupStatusCompleted PickupStatus = "COMPLETED"
)

type PickupItem struct {
	ProductID int32 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

type Pickup struct {
	ID           int32        `json:"id"`
	PickupNumber string       `json:"pickup_number"`
	OrderID      int32        `json:"order_id"`
	Items        []PickupItem `json:"items"`
	Status       PickupStatus `json:"status"`
	ReadyAt      *time.Time   `json:"ready_at,omitempty"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
	CreatedOn    time.Time    `json:"created_on"`
}

package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusActive   ReservationStatus = "ACTIVE"
	ReservationStatusReleased ReservationStatus = "RELEASED"
)

// Reservation claims Quantity units of a product for the closed date range
// [FromDate, ToDate]. Only ACTIVE reservations count against availability.
type Reservation struct {
	ID         int32             `json:"id"`
	OrderID    int32             `json:"order_id"`
	ProductID  int32             `json:"product_id"`
	Quantity   int32             `json:"quantity"`
	FromDate   time.Time         `json:"from_date"`
	ToDate     time.Time         `json:"to_date"`
	Status     ReservationStatus `json:"status"`
	ReleasedAt *time.Time        `json:"released_at,omitempty"`
	CreatedOn  time.Time         `json:"created_on"`
}

// Overlaps uses closed-interval intersection. A reservation ending on the day
// another starts conflicts with it.
func (r *Reservation) Overlaps(from, to time.Time) bool {
	return !r.FromDate.After(to) && !r.ToDate.Before(from)
}

package domain

import "time"

type User struct {
	ID        int32     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedOn time.Time `json:"created_on"`
}

// Address is a delivery address. Placeholder addresses are synthesized when a
// customer confirms an order without having any address on file.
type Address struct {
	ID            int32     `json:"id"`
	UserID        int32     `json:"user_id"`
	Line1         string    `json:"line1"`
	City          string    `json:"city"`
	PostalCode    string    `json:"postal_code"`
	Country       string    `json:"country"`
	IsDefault     bool      `json:"is_default"`
	IsPlaceholder bool      `json:"is_placeholder"`
	CreatedOn     time.Time `json:"created_on"`
}

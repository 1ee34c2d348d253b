package domain

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

type NotFoundError struct {
	Entity string
	ID     int32
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func NewNotFoundError(entity string, id int32) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// InsufficientStockError reports the first quotation line that cannot be fulfilled.
type InsufficientStockError struct {
	ProductID int32 `json:"product_id"`
	Requested int32 `json:"requested"`
	Available int32 `json:"available"`
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InvalidStateError is returned when an operation does not apply to the
// current status of an entity, e.g. returning an order twice.
type InvalidStateError struct {
	Entity string
	ID     int32
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Entity, e.ID, e.Reason)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

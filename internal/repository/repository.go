package repository

import (
	"context"
	"time"

	"rental-engine-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
}

type AddressRepository interface {
	Create(ctx context.Context, addr *domain.Address) error
	GetByID(ctx context.Context, id int32) (*domain.Address, error)
	// GetDefault returns the customer's default address, or a NotFoundError.
	GetDefault(ctx context.Context, userID int32) (*domain.Address, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int32) (*domain.Product, error)
	// LockForUpdate row-locks the given products in ascending id order.
	LockForUpdate(ctx context.Context, ids []int32) ([]domain.Product, error)
	// DecrementStock fails with InsufficientStockError rather than going negative.
	DecrementStock(ctx context.Context, id, quantity int32) error
}

type QuotationRepository interface {
	Create(ctx context.Context, q *domain.Quotation) error
	GetByID(ctx context.Context, id int32) (*domain.Quotation, error)
	GetForUpdate(ctx context.Context, id int32) (*domain.Quotation, error)
	MarkConfirmed(ctx context.Context, id, orderID int32) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id int32) (*domain.Order, error)
	GetForUpdate(ctx context.Context, id int32) (*domain.Order, error)
	GetByQuotationID(ctx context.Context, quotationID int32) (*domain.Order, error)
	// TransitionStatus moves the order to status only if its current status is
	// one of from. It reports whether a row changed.
	TransitionStatus(ctx context.Context, id int32, from []domain.OrderStatus, to domain.OrderStatus) (bool, error)
	CreateLines(ctx context.Context, lines []domain.OrderLine) error
	ListLines(ctx context.Context, orderID int32) ([]domain.OrderLine, error)
	// ListEndingBetween returns orders without a return whose rental end falls in [from, to].
	ListEndingBetween(ctx context.Context, from, to time.Time, statuses []domain.OrderStatus) ([]domain.Order, error)
	// ListEndingBefore returns orders without a return whose rental end is strictly before day.
	ListEndingBefore(ctx context.Context, day time.Time, statuses []domain.OrderStatus) ([]domain.Order, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	// ListActiveOverlapping returns ACTIVE reservations of the product intersecting [from, to].
	ListActiveOverlapping(ctx context.Context, productID int32, from, to time.Time) ([]domain.Reservation, error)
	ListByOrder(ctx context.Context, orderID int32) ([]domain.Reservation, error)
	ReleaseByOrder(ctx context.Context, orderID int32, at time.Time) (int64, error)
}

type InvoiceRepository interface {
	// CreateIfAbsent inserts the invoice unless one already exists for the order.
	// On conflict inv is overwritten with the stored invoice and created is false.
	CreateIfAbsent(ctx context.Context, inv *domain.Invoice) (created bool, err error)
	GetByOrderID(ctx context.Context, orderID int32) (*domain.Invoice, error)
}

type PickupRepository interface {
	Create(ctx context.Context, p *domain.Pickup) error
	GetByOrderID(ctx context.Context, orderID int32) (*domain.Pickup, error)
	Update(ctx context.Context, p *domain.Pickup) error
}

type ReturnRepository interface {
	Create(ctx context.Context, r *domain.Return) error
	GetByOrderID(ctx context.Context, orderID int32) (*domain.Return, error)
}

type StockMovementRepository interface {
	Create(ctx context.Context, m *domain.StockMovement) error
	ListByReference(ctx context.Context, orderID int32) ([]domain.StockMovement, error)
}

type NotificationRepository interface {
	// CreateIfAbsent inserts unless a notification with the same key exists.
	CreateIfAbsent(ctx context.Context, n *domain.Notification) (created bool, err error)
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}

type SequenceRepository interface {
	// Next atomically increments and returns the counter for (docType, year).
	Next(ctx context.Context, docType domain.DocumentType, year int) (int32, error)
}

// Repositories bundles every repository bound to one connection or transaction.
type Repositories struct {
	Users          UserRepository
	Addresses      AddressRepository
	Products       ProductRepository
	Quotations     QuotationRepository
	Orders         OrderRepository
	Reservations   ReservationRepository
	Invoices       InvoiceRepository
	Pickups        PickupRepository
	Returns        ReturnRepository
	StockMovements StockMovementRepository
	Notifications  NotificationRepository
	Sequences      SequenceRepository
}

// UnitOfWork runs fn inside a single transaction. Returning an error from fn
// rolls back every write made through the repos passed to it.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error
}

// Store is a backing store: plain repositories plus transactions.
type Store interface {
	UnitOfWork
	Repos() *Repositories
}

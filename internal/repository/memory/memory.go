// Package memory is an in-process implementation of the repository layer.
// A transaction holds the store mutex for its whole duration and restores a
// snapshot when it fails, which gives the same all-or-nothing and
// serialization guarantees as the Postgres store at a coarser grain.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/repository"
)

type seqKey struct {
	docType domain.DocumentType
	year    int
}

type data struct {
	lastID map[string]int32

	users         map[int32]domain.User
	addresses     map[int32]domain.Address
	products      map[int32]domain.Product
	quotations    map[int32]domain.Quotation
	orders        map[int32]domain.Order
	orderLines    map[int32][]domain.OrderLine // by order id
	reservations  map[int32]domain.Reservation
	invoices      map[int32]domain.Invoice // by order id
	pickups       map[int32]domain.Pickup  // by order id
	returns       map[int32]domain.Return  // by order id
	movements     []domain.StockMovement
	notifications map[int32]domain.Notification
	notifyKeys    map[domain.NotificationKey]int32
	sequences     map[seqKey]int32
}

func newData() *data {
	return &data{
		lastID:        map[string]int32{},
		users:         map[int32]domain.User{},
		addresses:     map[int32]domain.Address{},
		products:      map[int32]domain.Product{},
		quotations:    map[int32]domain.Quotation{},
		orders:        map[int32]domain.Order{},
		orderLines:    map[int32][]domain.OrderLine{},
		reservations:  map[int32]domain.Reservation{},
		invoices:      map[int32]domain.Invoice{},
		pickups:       map[int32]domain.Pickup{},
		returns:       map[int32]domain.Return{},
		notifications: map[int32]domain.Notification{},
		notifyKeys:    map[domain.NotificationKey]int32{},
		sequences:     map[seqKey]int32{},
	}
}

// clone copies every table. Values hold slices (lines, items) that are never
// mutated in place, so a shallow copy of each map is a valid snapshot.
func (d *data) clone() *data {
	return &data{
		lastID:        maps.Clone(d.lastID),
		users:         maps.Clone(d.users),
		addresses:     maps.Clone(d.addresses),
		products:      maps.Clone(d.products),
		quotations:    maps.Clone(d.quotations),
		orders:        maps.Clone(d.orders),
		orderLines:    maps.Clone(d.orderLines),
		reservations:  maps.Clone(d.reservations),
		invoices:      maps.Clone(d.invoices),
		pickups:       maps.Clone(d.pickups),
		returns:       maps.Clone(d.returns),
		movements:     slices.Clone(d.movements),
		notifications: maps.Clone(d.notifications),
		notifyKeys:    maps.Clone(d.notifyKeys),
		sequences:     maps.Clone(d.sequences),
	}
}

func (d *data) nextID(table string) int32 {
	d.lastID[table]++
	return d.lastID[table]
}

type noopLocker struct{}

func (noopLocker) Lock()   {}
func (noopLocker) Unlock() {}

// state is shared by every repository of one Repositories bundle.
type state struct {
	d  *data
	mu sync.Locker
}

type Store struct {
	mu sync.Mutex
	d  *data
	repository.Repositories
}

func NewStore() *Store {
	s := &Store{d: newData()}
	s.Repositories = *newRepositories(&state{d: s.d, mu: &s.mu})
	return s
}

func newRepositories(st *state) *repository.Repositories {
	return &repository.Repositories{
		Users:          &userRepository{st},
		Addresses:      &addressRepository{st},
		Products:       &productRepository{st},
		Quotations:     &quotationRepository{st},
		Orders:         &orderRepository{st},
		Reservations:   &reservationRepository{st},
		Invoices:       &invoiceRepository{st},
		Pickups:        &pickupRepository{st},
		Returns:        &returnRepository{st},
		StockMovements: &stockMovementRepository{st},
		Notifications:  &notificationRepository{st},
		Sequences:      &sequenceRepository{st},
	}
}

func (s *Store) Repos() *repository.Repositories {
	return &s.Repositories
}

// Ping always succeeds; the store lives in process.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos *repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := s.d.clone()
	defer func() {
		if p := recover(); p != nil {
			*s.d = *snapshot
			panic(p)
		}
	}()
	if err := fn(ctx, newRepositories(&state{d: s.d, mu: noopLocker{}})); err != nil {
		*s.d = *snapshot
		return err
	}
	return nil
}

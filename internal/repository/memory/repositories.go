package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"rental-engine-backend/internal/domain"
)

type userRepository struct{ *state }

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = r.d.nextID("users")
	u.CreatedOn = time.Now().UTC()
	r.d.users[u.ID] = *u
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.d.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("user", id)
	}
	return &u, nil
}

type addressRepository struct{ *state }

func (r *addressRepository) Create(ctx context.Context, a *domain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.d.nextID("addresses")
	a.CreatedOn = time.Now().UTC()
	r.d.addresses[a.ID] = *a
	return nil
}

func (r *addressRepository) GetByID(ctx context.Context, id int32) (*domain.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.d.addresses[id]
	if !ok {
		return nil, domain.NewNotFoundError("address", id)
	}
	return &a, nil
}

func (r *addressRepository) GetDefault(ctx context.Context, userID int32) (*domain.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *domain.Address
	for _, a := range r.d.addresses {
		if a.UserID == userID && a.IsDefault && (best == nil || a.ID < best.ID) {
			a := a
			best = &a
		}
	}
	if best == nil {
		return nil, domain.NewNotFoundError("default address for user", userID)
	}
	return best, nil
}

type productRepository struct{ *state }

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.QuantityOnHand < 0 {
		return fmt.Errorf("quantity_on_hand must be non-negative")
	}
	p.ID = r.d.nextID("products")
	r.d.products[p.ID] = *p
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id int32) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.d.products[id]
	if !ok {
		return nil, domain.NewNotFoundError("product", id)
	}
	return &p, nil
}

// LockForUpdate is a read here; the transaction already holds the store mutex.
func (r *productRepository) LockForUpdate(ctx context.Context, ids []int32) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	out := make([]domain.Product, 0, len(sorted))
	for _, id := range sorted {
		p, ok := r.d.products[id]
		if !ok {
			return nil, domain.NewNotFoundError("product", id)
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *productRepository) DecrementStock(ctx context.Context, id, quantity int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.d.products[id]
	if !ok {
		return domain.NewNotFoundError("product", id)
	}
	if p.QuantityOnHand < quantity {
		return &domain.InsufficientStockError{ProductID: id, Requested: quantity, Available: p.QuantityOnHand}
	}
	p.QuantityOnHand -= quantity
	r.d.products[id] = p
	return nil
}

type quotationRepository struct{ *state }

func (r *quotationRepository) Create(ctx context.Context, q *domain.Quotation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q.ID = r.d.nextID("quotations")
	now := time.Now().UTC()
	q.CreatedOn, q.UpdatedOn = now, now
	if q.Status == "" {
		q.Status = domain.QuotationStatusDraft
	}
	lines := slices.Clone(q.Lines)
	for i := range lines {
		lines[i].ID = r.d.nextID("quotation_lines")
		lines[i].QuotationID = q.ID
	}
	q.Lines = lines
	stored := *q
	stored.Lines = slices.Clone(lines)
	r.d.quotations[q.ID] = stored
	return nil
}

func (r *quotationRepository) GetByID(ctx context.Context, id int32) (*domain.Quotation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.d.quotations[id]
	if !ok {
		return nil, domain.NewNotFoundError("quotation", id)
	}
	q.Lines = slices.Clone(q.Lines)
	return &q, nil
}

func (r *quotationRepository) GetForUpdate(ctx context.Context, id int32) (*domain.Quotation, error) {
	return r.GetByID(ctx, id)
}

func (r *quotationRepository) MarkConfirmed(ctx context.Context, id, orderID int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.d.quotations[id]
	if !ok {
		return domain.NewNotFoundError("quotation", id)
	}
	q.Status = domain.QuotationStatusConfirmed
	q.OrderID = &orderID
	q.UpdatedOn = time.Now().UTC()
	r.d.quotations[id] = q
	return nil
}

type orderRepository struct{ *state }

func (r *orderRepository) Create(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.d.orders {
		if existing.QuotationID == o.QuotationID {
			return fmt.Errorf("duplicate order for quotation %d", o.QuotationID)
		}
	}
	o.ID = r.d.nextID("orders")
	now := time.Now().UTC()
	o.CreatedOn, o.UpdatedOn = now, now
	r.d.orders[o.ID] = *o
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int32) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.d.orders[id]
	if !ok {
		return nil, domain.NewNotFoundError("order", id)
	}
	return &o, nil
}

func (r *orderRepository) GetByQuotationID(ctx context.Context, quotationID int32) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.d.orders {
		if o.QuotationID == quotationID {
			return &o, nil
		}
	}
	return nil, domain.NewNotFoundError("order for quotation", quotationID)
}

func (r *orderRepository) GetForUpdate(ctx context.Context, id int32) (*domain.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *orderRepository) TransitionStatus(ctx context.Context, id int32, from []domain.OrderStatus, to domain.OrderStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.d.orders[id]
	if !ok || !slices.Contains(from, o.Status) {
		return false, nil
	}
	o.Status = to
	o.UpdatedOn = time.Now().UTC()
	r.d.orders[id] = o
	return true, nil
}

func (r *orderRepository) CreateLines(ctx context.Context, lines []domain.OrderLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range lines {
		lines[i].ID = r.d.nextID("order_lines")
		orderID := lines[i].OrderID
		r.d.orderLines[orderID] = append(slices.Clone(r.d.orderLines[orderID]), lines[i])
	}
	return nil
}

func (r *orderRepository) ListLines(ctx context.Context, orderID int32) ([]domain.OrderLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.d.orderLines[orderID]), nil
}

func (r *orderRepository) ListEndingBetween(ctx context.Context, from, to time.Time, statuses []domain.OrderStatus) ([]domain.Order, error) {
	return r.list(statuses, func(end time.Time) bool {
		return !end.Before(from) && !end.After(to)
	}), nil
}

func (r *orderRepository) ListEndingBefore(ctx context.Context, day time.Time, statuses []domain.OrderStatus) ([]domain.Order, error) {
	return r.list(statuses, func(end time.Time) bool {
		return end.Before(day)
	}), nil
}

func (r *orderRepository) list(statuses []domain.OrderStatus, match func(end time.Time) bool) []domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.d.orders {
		if !slices.Contains(statuses, o.Status) || o.RentalEnd.IsZero() || !match(o.RentalEnd) {
			continue
		}
		if _, returned := r.d.returns[o.ID]; returned {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RentalEnd.Equal(out[j].RentalEnd) {
			return out[i].RentalEnd.Before(out[j].RentalEnd)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type reservationRepository struct{ *state }

func (r *reservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res.Quantity <= 0 || res.FromDate.After(res.ToDate) {
		return fmt.Errorf("invalid reservation for product %d", res.ProductID)
	}
	res.ID = r.d.nextID("reservations")
	res.CreatedOn = time.Now().UTC()
	if res.Status == "" {
		res.Status = domain.ReservationStatusActive
	}
	r.d.reservations[res.ID] = *res
	return nil
}

func (r *reservationRepository) ListActiveOverlapping(ctx context.Context, productID int32, from, to time.Time) ([]domain.Reservation, error) {
	return r.list(func(res *domain.Reservation) bool {
		return res.ProductID == productID && res.Status == domain.ReservationStatusActive && res.Overlaps(from, to)
	}), nil
}

func (r *reservationRepository) ListByOrder(ctx context.Context, orderID int32) ([]domain.Reservation, error) {
	return r.list(func(res *domain.Reservation) bool { return res.OrderID == orderID }), nil
}

func (r *reservationRepository) ReleaseByOrder(ctx context.Context, orderID int32, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, res := range r.d.reservations {
		if res.OrderID != orderID || res.Status != domain.ReservationStatusActive {
			continue
		}
		res.Status = domain.ReservationStatusReleased
		releasedAt := at
		res.ReleasedAt = &releasedAt
		r.d.reservations[id] = res
		n++
	}
	return n, nil
}

func (r *reservationRepository) list(match func(res *domain.Reservation) bool) []domain.Reservation {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Reservation
	for _, res := range r.d.reservations {
		if match(&res) {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type invoiceRepository struct{ *state }

func (r *invoiceRepository) CreateIfAbsent(ctx context.Context, inv *domain.Invoice) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.d.invoices[inv.OrderID]; ok {
		*inv = existing
		return false, nil
	}
	inv.ID = r.d.nextID("invoices")
	r.d.invoices[inv.OrderID] = *inv
	return true, nil
}

func (r *invoiceRepository) GetByOrderID(ctx context.Context, orderID int32) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.d.invoices[orderID]
	if !ok {
		return nil, domain.NewNotFoundError("invoice for order", orderID)
	}
	return &inv, nil
}

type pickupRepository struct{ *state }

func (r *pickupRepository) Create(ctx context.Context, p *domain.Pickup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.d.pickups[p.OrderID]; ok {
		return fmt.Errorf("duplicate pickup for order %d", p.OrderID)
	}
	p.ID = r.d.nextID("pickups")
	p.CreatedOn = time.Now().UTC()
	stored := *p
	stored.Items = slices.Clone(p.Items)
	r.d.pickups[p.OrderID] = stored
	return nil
}

func (r *pickupRepository) GetByOrderID(ctx context.Context, orderID int32) (*domain.Pickup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.d.pickups[orderID]
	if !ok {
		return nil, domain.NewNotFoundError("pickup for order", orderID)
	}
	p.Items = slices.Clone(p.Items)
	return &p, nil
}

func (r *pickupRepository) Update(ctx context.Context, p *domain.Pickup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.d.pickups[p.OrderID]
	if !ok || existing.ID != p.ID {
		return domain.NewNotFoundError("pickup", p.ID)
	}
	existing.Status = p.Status
	existing.ReadyAt = p.ReadyAt
	existing.CompletedAt = p.CompletedAt
	r.d.pickups[p.OrderID] = existing
	return nil
}

type returnRepository struct{ *state }

func (r *returnRepository) Create(ctx context.Context, ret *domain.Return) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.d.returns[ret.OrderID]; ok {
		return fmt.Errorf("duplicate return for order %d", ret.OrderID)
	}
	ret.ID = r.d.nextID("returns")
	ret.CreatedOn = time.Now().UTC()
	stored := *ret
	stored.Items = slices.Clone(ret.Items)
	r.d.returns[ret.OrderID] = stored
	return nil
}

func (r *returnRepository) GetByOrderID(ctx context.Context, orderID int32) (*domain.Return, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret, ok := r.d.returns[orderID]
	if !ok {
		return nil, domain.NewNotFoundError("return for order", orderID)
	}
	ret.Items = slices.Clone(ret.Items)
	return &ret, nil
}

type stockMovementRepository struct{ *state }

func (r *stockMovementRepository) Create(ctx context.Context, m *domain.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = r.d.nextID("stock_movements")
	m.CreatedOn = time.Now().UTC()
	r.d.movements = append(r.d.movements, *m)
	return nil
}

func (r *stockMovementRepository) ListByReference(ctx context.Context, orderID int32) ([]domain.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.StockMovement
	for _, m := range r.d.movements {
		if m.ReferenceID == orderID {
			out = append(out, m)
		}
	}
	return out, nil
}

type notificationRepository struct{ *state }

func (r *notificationRepository) CreateIfAbsent(ctx context.Context, n *domain.Notification) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := n.Key()
	if _, ok := r.d.notifyKeys[key]; ok {
		return false, nil
	}
	n.ID = r.d.nextID("notifications")
	n.CreatedOn = time.Now().UTC()
	r.d.notifications[n.ID] = *n
	r.d.notifyKeys[key] = n.ID
	return true, nil
}

func (r *notificationRepository) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []domain.Notification
	for _, n := range r.d.notifications {
		if n.UserID == userID {
			all = append(all, n)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	count := int32(len(all))
	if offset >= count {
		return nil, count, nil
	}
	end := offset + limit
	if limit <= 0 || end > count {
		end = count
	}
	return all[offset:end], count, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.d.notifications[id]
	if !ok || n.UserID != userID {
		return domain.NewNotFoundError("notification", id)
	}
	n.IsRead = true
	r.d.notifications[id] = n
	return nil
}

type sequenceRepository struct{ *state }

func (r *sequenceRepository) Next(ctx context.Context, docType domain.DocumentType, year int) (int32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := seqKey{docType: docType, year: year}
	r.d.sequences[key]++
	return r.d.sequences[key], nil
}

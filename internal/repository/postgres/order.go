package postgres

import (
	"context"
	"database/sql"
	"time"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/repository"

	"github.com/lib/pq"
)

type orderRepository struct {
	db dbtx
}

func NewOrderRepository(db dbtx) repository.OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, order_number, quotation_id, customer_id, address_id, status, subtotal, discount_amount, tax_amount, total_amount, amount_paid, rental_start, rental_end, payment_reference, created_on, updated_on`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	o := &domain.Order{}
	var start, end sql.NullTime
	err := row.Scan(&o.ID, &o.OrderNumber, &o.QuotationID, &o.CustomerID, &o.AddressID, &o.Status, &o.Subtotal, &o.DiscountAmount,
		&o.TaxAmount, &o.TotalAmount, &o.AmountPaid, &start, &end, &o.PaymentReference, &o.CreatedOn, &o.UpdatedOn)
	if err != nil {
		return nil, err
	}
	o.RentalStart = dateFromNull(start)
	o.RentalEnd = dateFromNull(end)
	return o, nil
}

func (r *orderRepository) Create(ctx context.Context, o *domain.Order) error {
	query := `INSERT INTO orders (order_number, quotation_id, customer_id, address_id, status, subtotal, discount_amount, tax_amount, total_amount, amount_paid, rental_start, rental_end, payment_reference, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING id`
	now := time.Now().UTC()
	o.CreatedOn, o.UpdatedOn = now, now
	logger.DatabaseCall("INSERT", "orders", "orderNumber", o.OrderNumber, "quotationID", o.QuotationID)
	err := r.db.QueryRowContext(ctx, query, o.OrderNumber, o.QuotationID, o.CustomerID, o.AddressID, o.Status, o.Subtotal,
		o.DiscountAmount, o.TaxAmount, o.TotalAmount, o.AmountPaid, nullDate(o.RentalStart), nullDate(o.RentalEnd),
		o.PaymentReference, now, now).Scan(&o.ID)
	logger.DatabaseResult("INSERT", 1, err, "orderID", o.ID)
	return err
}

func (r *orderRepository) GetByID(ctx context.Context, id int32) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "order", id)
	}
	return o, nil
}

func (r *orderRepository) GetByQuotationID(ctx context.Context, quotationID int32) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE quotation_id = $1`, quotationID))
	if err != nil {
		return nil, notFound(err, "order for quotation", quotationID)
	}
	return o, nil
}

func (r *orderRepository) GetForUpdate(ctx context.Context, id int32) (*domain.Order, error) {
	logger.DatabaseCall("SELECT FOR UPDATE", "orders", "orderID", id)
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "order", id)
	}
	return o, nil
}

func (r *orderRepository) TransitionStatus(ctx context.Context, id int32, from []domain.OrderStatus, to domain.OrderStatus) (bool, error) {
	query := `UPDATE orders SET status = $1, updated_on = $2 WHERE id = $3 AND status = ANY($4)`
	logger.DatabaseCall("UPDATE", "orders", "orderID", id, "status", to)
	result, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), id, pq.Array(statusStrings(from)))
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return false, err
	}
	affected, err := result.RowsAffected()
	logger.DatabaseResult("UPDATE", affected, err)
	return affected > 0, err
}

func (r *orderRepository) CreateLines(ctx context.Context, lines []domain.OrderLine) error {
	query := `INSERT INTO order_lines (order_id, product_id, quantity, line_type, unit_price, line_total)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	logger.DatabaseCall("INSERT", "order_lines", "count", len(lines))
	for i := range lines {
		l := &lines[i]
		if err := r.db.QueryRowContext(ctx, query, l.OrderID, l.ProductID, l.Quantity, l.Type, l.UnitPrice, l.LineTotal).Scan(&l.ID); err != nil {
			logger.DatabaseResult("INSERT", int64(i), err)
			return err
		}
	}
	logger.DatabaseResult("INSERT", int64(len(lines)), nil)
	return nil
}

func (r *orderRepository) ListLines(ctx context.Context, orderID int32) ([]domain.OrderLine, error) {
	query := `SELECT id, order_id, product_id, quantity, line_type, unit_price, line_total FROM order_lines WHERE order_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.Type, &l.UnitPrice, &l.LineTotal); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *orderRepository) ListEndingBetween(ctx context.Context, from, to time.Time, statuses []domain.OrderStatus) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o
	          WHERE o.status = ANY($1) AND o.rental_end BETWEEN $2 AND $3
	          AND NOT EXISTS (SELECT 1 FROM returns r WHERE r.order_id = o.id)
	          ORDER BY o.rental_end, o.id`
	return r.list(ctx, query, pq.Array(statusStrings(statuses)), from, to)
}

func (r *orderRepository) ListEndingBefore(ctx context.Context, day time.Time, statuses []domain.OrderStatus) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o
	          WHERE o.status = ANY($1) AND o.rental_end < $2
	          AND NOT EXISTS (SELECT 1 FROM returns r WHERE r.order_id = o.id)
	          ORDER BY o.rental_end, o.id`
	return r.list(ctx, query, pq.Array(statusStrings(statuses)), day)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	logger.DatabaseCall("SELECT", "orders")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	logger.DatabaseResult("SELECT", int64(len(orders)), rows.Err())
	return orders, rows.Err()
}

func statusStrings(statuses []domain.OrderStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

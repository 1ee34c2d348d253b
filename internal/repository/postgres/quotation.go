package postgres

import (
	"context"
	"database/sql"
	"time"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/repository"
)

type quotationRepository struct {
	db dbtx
}

func NewQuotationRepository(db dbtx) repository.QuotationRepository {
	return &quotationRepository{db: db}
}

const quotationColumns = `id, customer_id, rental_start, rental_end, subtotal, discount_amount, tax_amount, total_amount, status, order_id, created_on, updated_on`

func (r *quotationRepository) Create(ctx context.Context, q *domain.Quotation) error {
	query := `INSERT INTO quotations (customer_id, rental_start, rental_end, subtotal, discount_amount, tax_amount, total_amount, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	now := time.Now().UTC()
	q.CreatedOn, q.UpdatedOn = now, now
	if q.Status == "" {
		q.Status = domain.QuotationStatusDraft
	}
	logger.DatabaseCall("INSERT", "quotations", "customerID", q.CustomerID, "lines", len(q.Lines))
	err := r.db.QueryRowContext(ctx, query, q.CustomerID, nullDate(q.RentalStart), nullDate(q.RentalEnd),
		q.Subtotal, q.DiscountAmount, q.TaxAmount, q.TotalAmount, q.Status, now, now).Scan(&q.ID)
	logger.DatabaseResult("INSERT", 1, err, "quotationID", q.ID)
	if err != nil {
		return err
	}

	lineQuery := `INSERT INTO quotation_lines (quotation_id, product_id, quantity, line_type, unit_price, line_total)
	              VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	for i := range q.Lines {
		l := &q.Lines[i]
		l.QuotationID = q.ID
		if err := r.db.QueryRowContext(ctx, lineQuery, q.ID, l.ProductID, l.Quantity, l.Type, l.UnitPrice, l.LineTotal).Scan(&l.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *quotationRepository) GetByID(ctx context.Context, id int32) (*domain.Quotation, error) {
	return r.get(ctx, `SELECT `+quotationColumns+` FROM quotations WHERE id = $1`, id)
}

func (r *quotationRepository) GetForUpdate(ctx context.Context, id int32) (*domain.Quotation, error) {
	logger.DatabaseCall("SELECT FOR UPDATE", "quotations", "quotationID", id)
	return r.get(ctx, `SELECT `+quotationColumns+` FROM quotations WHERE id = $1 FOR UPDATE`, id)
}

func (r *quotationRepository) get(ctx context.Context, query string, id int32) (*domain.Quotation, error) {
	q := &domain.Quotation{}
	var start, end sql.NullTime
	var orderID sql.NullInt32
	err := r.db.QueryRowContext(ctx, query, id).Scan(&q.ID, &q.CustomerID, &start, &end, &q.Subtotal, &q.DiscountAmount,
		&q.TaxAmount, &q.TotalAmount, &q.Status, &orderID, &q.CreatedOn, &q.UpdatedOn)
	if err != nil {
		return nil, notFound(err, "quotation", id)
	}
	q.RentalStart = dateFromNull(start)
	q.RentalEnd = dateFromNull(end)
	if orderID.Valid {
		q.OrderID = &orderID.Int32
	}

	lineQuery := `SELECT id, quotation_id, product_id, quantity, line_type, unit_price, line_total
	              FROM quotation_lines WHERE quotation_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, lineQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l domain.QuotationLine
		if err := rows.Scan(&l.ID, &l.QuotationID, &l.ProductID, &l.Quantity, &l.Type, &l.UnitPrice, &l.LineTotal); err != nil {
			return nil, err
		}
		q.Lines = append(q.Lines, l)
	}
	return q, rows.Err()
}

func (r *quotationRepository) MarkConfirmed(ctx context.Context, id, orderID int32) error {
	query := `UPDATE quotations SET status = $1, order_id = $2, updated_on = $3 WHERE id = $4`
	logger.DatabaseCall("UPDATE", "quotations", "quotationID", id, "orderID", orderID)
	result, err := r.db.ExecContext(ctx, query, domain.QuotationStatusConfirmed, orderID, time.Now().UTC(), id)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return err
	}
	logger.DatabaseResult("UPDATE", affected, nil)
	if affected == 0 {
		return domain.NewNotFoundError("quotation", id)
	}
	return nil
}

func nullDate(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func dateFromNull(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return time.Date(t.Time.Year(), t.Time.Month(), t.Time.Day(), 0, 0, 0, 0, time.UTC)
}

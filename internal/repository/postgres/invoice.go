package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/repository"
)

type invoiceRepository struct {
	db dbtx
}

func NewInvoiceRepository(db dbtx) repository.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) CreateIfAbsent(ctx context.Context, inv *domain.Invoice) (bool, error) {
	query := `INSERT INTO invoices (invoice_number, order_id, customer_id, subtotal, discount_amount, tax_amount, total_amount, amount_paid, status, issued_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          ON CONFLICT (order_id) DO NOTHING RETURNING id`
	logger.DatabaseCall("INSERT", "invoices", "orderID", inv.OrderID, "invoiceNumber", inv.InvoiceNumber)
	err := r.db.QueryRowContext(ctx, query, inv.InvoiceNumber, inv.OrderID, inv.CustomerID, inv.Subtotal, inv.DiscountAmount,
		inv.TaxAmount, inv.TotalAmount, inv.AmountPaid, inv.Status, inv.IssuedOn).Scan(&inv.ID)
	if errors.Is(err, sql.ErrNoRows) {
		logger.DatabaseResult("INSERT", 0, nil, "orderID", inv.OrderID, "conflict", true)
		existing, err := r.GetByOrderID(ctx, inv.OrderID)
		if err != nil {
			return false, err
		}
		*inv = *existing
		return false, nil
	}
	logger.DatabaseResult("INSERT", 1, err, "invoiceID", inv.ID)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *invoiceRepository) GetByOrderID(ctx context.Context, orderID int32) (*domain.Invoice, error) {
	inv := &domain.Invoice{}
	query := `SELECT id, invoice_number, order_id, customer_id, subtotal, discount_amount, tax_amount, total_amount, amount_paid, status, issued_on
	          FROM invoices WHERE order_id = $1`
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(&inv.ID, &inv.InvoiceNumber, &inv.OrderID, &inv.CustomerID, &inv.Subtotal,
		&inv.DiscountAmount, &inv.TaxAmount, &inv.TotalAmount, &inv.AmountPaid, &inv.Status, &inv.IssuedOn)
	if err != nil {
		return nil, notFound(err, "invoice for order", orderID)
	}
	return inv, nil
}

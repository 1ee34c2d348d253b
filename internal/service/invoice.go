package service

import (
	"context"
	"time"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/repository"
)

type invoiceService struct {
	store repository.Store
	now   func() time.Time
}

func NewInvoiceService(store repository.Store) InvoiceService {
	return &invoiceService{store: store, now: time.Now}
}

// GetOrCreateInvoice returns the order's invoice, creating it on first access
// for orders that predate eager invoicing. Concurrent callers converge on one
// invoice through the unique order constraint.
func (s *invoiceService) GetOrCreateInvoice(ctx context.Context, orderID int32) (*domain.Invoice, error) {
	inv, err := s.store.Repos().Invoices.GetByOrderID(ctx, orderID)
	if err == nil {
		return inv, nil
	}
	if !domain.IsNotFound(err) {
		return nil, err
	}

	logger.Info("Invoice missing, creating lazily", "orderID", orderID)
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		order, err := repos.Orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		number, err := allocateNumber(ctx, repos, domain.DocumentTypeInvoice, now)
		if err != nil {
			return err
		}
		inv = domain.NewInvoiceForOrder(order, number, now)
		_, err = repos.Invoices.CreateIfAbsent(ctx, inv)
		return err
	})
	if err != nil {
		logger.Error("Failed to create invoice", "orderID", orderID, "error", err)
		return nil, err
	}
	return inv, nil
}

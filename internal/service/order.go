package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/messaging"
	"rental-engine-backend/internal/repository"
	"rental-engine-backend/internal/utils"
)

type orderService struct {
	store    repository.Store
	notifier *Notifier
	now      func() time.Time
}

func NewOrderService(store repository.Store, notifier *Notifier) OrderService {
	return &orderService{
		store:    store,
		notifier: notifier,
		now:      time.Now,
	}
}

func windowOf(q *domain.Quotation) RentalWindow {
	return RentalWindow{From: utils.DateOnly(q.RentalStart), To: utils.DateOnly(q.RentalEnd)}
}

func (s *orderService) CheckAvailability(ctx context.Context, quotationID int32) (*AvailabilityReport, error) {
	logger.EnterMethod("orderService.CheckAvailability", "quotationID", quotationID)

	repos := s.store.Repos()
	q, err := repos.Quotations.GetByID(ctx, quotationID)
	if err != nil {
		logger.ExitMethodWithError("orderService.CheckAvailability", err, "quotationID", quotationID)
		return nil, err
	}

	report := &AvailabilityReport{QuotationID: quotationID, Available: true}
	planner := NewReservationPlanner(NewInventoryLedger(repos.Products, repos.Reservations))
	if _, err := planner.Plan(ctx, q.Lines, windowOf(q)); err != nil {
		var shortfall *domain.InsufficientStockError
		if !errors.As(err, &shortfall) {
			logger.ExitMethodWithError("orderService.CheckAvailability", err, "quotationID", quotationID)
			return nil, err
		}
		report.Available = false
		report.Shortfall = shortfall
	}

	logger.ExitMethod("orderService.CheckAvailability", "quotationID", quotationID, "available", report.Available)
	return report, nil
}

// confirmation carries what the post-commit effects need out of the transaction.
type confirmation struct {
	order *domain.Order
	lines []domain.OrderLine
}

func (s *orderService) ConfirmQuotation(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error) {
	logger.EnterMethod("orderService.ConfirmQuotation", "quotationID", req.QuotationID)

	var result *ConfirmResult
	var done *confirmation

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		q, err := repos.Quotations.GetForUpdate(ctx, req.QuotationID)
		if err != nil {
			return err
		}

		if q.IsConfirmed() {
			existing, err := existingOrder(ctx, repos, q)
			if err != nil {
				return err
			}
			result = &ConfirmResult{OrderID: existing.ID, OrderNumber: existing.OrderNumber, AlreadyConfirmed: true}
			return nil
		}

		window := windowOf(q)
		if err := ValidateLines(q.Lines, window); err != nil {
			return err
		}

		// Lock every product before re-checking so competing confirmations
		// on the same product serialize here.
		if _, err := repos.Products.LockForUpdate(ctx, distinctProductIDs(q.Lines)); err != nil {
			return err
		}

		plan, err := NewReservationPlanner(NewInventoryLedger(repos.Products, repos.Reservations)).Plan(ctx, q.Lines, window)
		if err != nil {
			return err
		}

		addressID, err := resolveAddress(ctx, repos, q.CustomerID, req.AddressID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		orderNumber, err := allocateNumber(ctx, repos, domain.DocumentTypeOrder, now)
		if err != nil {
			return err
		}

		order := &domain.Order{
			OrderNumber:      orderNumber,
			QuotationID:      q.ID,
			CustomerID:       q.CustomerID,
			AddressID:        addressID,
			Status:           domain.OrderStatusConfirmed,
			Subtotal:         q.Subtotal,
			DiscountAmount:   q.DiscountAmount,
			TaxAmount:        q.TaxAmount,
			TotalAmount:      q.TotalAmount,
			AmountPaid:       q.TotalAmount,
			PaymentReference: req.PaymentReference,
		}
		if q.HasRentalLines() {
			order.RentalStart, order.RentalEnd = window.From, window.To
		}
		if err := repos.Orders.Create(ctx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		lines := make([]domain.OrderLine, 0, len(q.Lines))
		for _, ql := range q.Lines {
			lines = append(lines, domain.OrderLine{
				OrderID:   order.ID,
				ProductID: ql.ProductID,
				Quantity:  ql.Quantity,
				Type:      ql.Type,
				UnitPrice: ql.UnitPrice,
				LineTotal: ql.LineTotal,
			})
		}
		if err := repos.Orders.CreateLines(ctx, lines); err != nil {
			return fmt.Errorf("failed to create order lines: %w", err)
		}

		for _, r := range plan.Reservations {
			res := &domain.Reservation{
				OrderID:   order.ID,
				ProductID: r.ProductID,
				Quantity:  r.Quantity,
				FromDate:  window.From,
				ToDate:    window.To,
				Status:    domain.ReservationStatusActive,
			}
			if err := repos.Reservations.Create(ctx, res); err != nil {
				return fmt.Errorf("failed to create reservation: %w", err)
			}
		}

		for _, d := range plan.SaleDecrements {
			if err := repos.Products.DecrementStock(ctx, d.ProductID, d.Quantity); err != nil {
				return err
			}
			if err := repos.StockMovements.Create(ctx, &domain.StockMovement{
				ProductID:    d.ProductID,
				Quantity:     -d.Quantity,
				MovementType: domain.MovementTypeSaleDecrement,
				ReferenceID:  order.ID,
				Note:         fmt.Sprintf("sold on %s", orderNumber),
			}); err != nil {
				return fmt.Errorf("failed to record stock movement: %w", err)
			}
		}

		invoiceNumber, err := allocateNumber(ctx, repos, domain.DocumentTypeInvoice, now)
		if err != nil {
			return err
		}
		if _, err := repos.Invoices.CreateIfAbsent(ctx, domain.NewInvoiceForOrder(order, invoiceNumber, now)); err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		if len(plan.Reservations) > 0 {
			pickupNumber, err := allocateNumber(ctx, repos, domain.DocumentTypePickup, now)
			if err != nil {
				return err
			}
			if err := repos.Pickups.Create(ctx, &domain.Pickup{
				PickupNumber: pickupNumber,
				OrderID:      order.ID,
				Items:        plan.PickupItems(),
				Status:       domain.PickupStatusPending,
			}); err != nil {
				return fmt.Errorf("failed to create pickup: %w", err)
			}
			for _, l := range lines {
				if l.Type != domain.LineTypeRental {
					continue
				}
				if err := repos.StockMovements.Create(ctx, &domain.StockMovement{
					ProductID:    l.ProductID,
					Quantity:     -l.Quantity,
					MovementType: domain.MovementTypePickup,
					ReferenceID:  order.ID,
					Note:         fmt.Sprintf("scheduled for %s", pickupNumber),
				}); err != nil {
					return fmt.Errorf("failed to record stock movement: %w", err)
				}
			}
		}

		if err := repos.Quotations.MarkConfirmed(ctx, q.ID, order.ID); err != nil {
			return fmt.Errorf("failed to confirm quotation: %w", err)
		}

		result = &ConfirmResult{OrderID: order.ID, OrderNumber: order.OrderNumber}
		done = &confirmation{order: order, lines: lines}
		return nil
	})
	if err != nil {
		var shortfall *domain.InsufficientStockError
		if errors.As(err, &shortfall) {
			logger.ExitMethodWithWarning("orderService.ConfirmQuotation", err, "quotationID", req.QuotationID)
		} else {
			logger.ExitMethodWithError("orderService.ConfirmQuotation", err, "quotationID", req.QuotationID)
		}
		return nil, err
	}

	if done != nil {
		s.afterConfirm(context.WithoutCancel(ctx), done)
	}

	logger.ExitMethod("orderService.ConfirmQuotation", "orderID", result.OrderID, "orderNumber", result.OrderNumber, "alreadyConfirmed", result.AlreadyConfirmed)
	return result, nil
}

func (s *orderService) afterConfirm(ctx context.Context, c *confirmation) {
	today := utils.DateOnly(s.now())
	o := c.order

	subject, body := orderConfirmedEmail(o, c.lines)
	_ = s.notifier.Email(ctx, o.CustomerID, subject, body)

	_, _ = s.notifier.Notify(ctx, newNotification(o.CustomerID, domain.NotificationTypeOrderConfirmed, o, today,
		"Order Confirmed", fmt.Sprintf("Your order %s has been confirmed", o.OrderNumber)))

	vendors, err := s.notifier.VendorsOf(ctx, c.lines)
	if err != nil {
		logger.Error("Failed to resolve vendors for order", "orderID", o.ID, "error", err)
	}
	for _, vendorID := range vendors {
		_, _ = s.notifier.Notify(ctx, newNotification(vendorID, domain.NotificationTypeNewOrder, o, today,
			"New Order", fmt.Sprintf("Order %s includes your products", o.OrderNumber)))
	}

	s.notifier.Publish(ctx, messaging.NewOrderEvent(messaging.EventOrderConfirmed, o.ID, o.OrderNumber, map[string]any{
		"customer_id":  o.CustomerID,
		"total_amount": o.TotalAmount,
		"lines":        c.lines,
	}))
}

func (s *orderService) GetOrder(ctx context.Context, orderID int32) (*domain.OrderDetails, error) {
	repos := s.store.Repos()

	order, err := repos.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	lines, err := repos.Orders.ListLines(ctx, orderID)
	if err != nil {
		return nil, err
	}
	details := &domain.OrderDetails{Order: order, Lines: lines}

	if details.Invoice, err = optional(repos.Invoices.GetByOrderID(ctx, orderID)); err != nil {
		return nil, err
	}
	if details.Pickup, err = optional(repos.Pickups.GetByOrderID(ctx, orderID)); err != nil {
		return nil, err
	}
	if details.Return, err = optional(repos.Returns.GetByOrderID(ctx, orderID)); err != nil {
		return nil, err
	}
	return details, nil
}

// optional turns a not-found lookup into a nil result.
func optional[T any](v *T, err error) (*T, error) {
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

func existingOrder(ctx context.Context, repos *repository.Repositories, q *domain.Quotation) (*domain.Order, error) {
	if q.OrderID != nil {
		return repos.Orders.GetByID(ctx, *q.OrderID)
	}
	return repos.Orders.GetByQuotationID(ctx, q.ID)
}

func distinctProductIDs(lines []domain.QuotationLine) []int32 {
	seen := map[int32]bool{}
	var ids []int32
	for _, l := range lines {
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			ids = append(ids, l.ProductID)
		}
	}
	return ids
}

// resolveAddress picks the explicit address, then the customer's default,
// and finally creates a placeholder default so an order always has one.
func resolveAddress(ctx context.Context, repos *repository.Repositories, customerID int32, addressID *int32) (int32, error) {
	if addressID != nil {
		addr, err := repos.Addresses.GetByID(ctx, *addressID)
		if err != nil {
			if domain.IsNotFound(err) {
				return 0, domain.NewValidationError("address_id", fmt.Sprintf("address %d does not exist", *addressID))
			}
			return 0, err
		}
		if addr.UserID != customerID {
			return 0, domain.NewValidationError("address_id", "address does not belong to the customer")
		}
		return addr.ID, nil
	}

	addr, err := repos.Addresses.GetDefault(ctx, customerID)
	if err == nil {
		return addr.ID, nil
	}
	if !domain.IsNotFound(err) {
		return 0, err
	}

	placeholder := &domain.Address{UserID: customerID, IsDefault: true, IsPlaceholder: true}
	if err := repos.Addresses.Create(ctx, placeholder); err != nil {
		return 0, fmt.Errorf("failed to create placeholder address: %w", err)
	}
	logger.Info("Created placeholder address", "customerID", customerID, "addressID", placeholder.ID)
	return placeholder.ID, nil
}

func allocateNumber(ctx context.Context, repos *repository.Repositories, docType domain.DocumentType, at time.Time) (string, error) {
	year := at.UTC().Year()
	seq, err := repos.Sequences.Next(ctx, docType, year)
	if err != nil {
		return "", err
	}
	return domain.FormatDocumentNumber(docType, year, seq), nil
}

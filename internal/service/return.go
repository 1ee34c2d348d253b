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

	"github.com/shopspring/decimal"
)

type returnService struct {
	store    repository.Store
	notifier *Notifier
	now      func() time.Time
}

func NewReturnService(store repository.Store, notifier *Notifier) ReturnService {
	return &returnService{store: store, notifier: notifier, now: time.Now}
}

var returnableStatuses = []domain.OrderStatus{
	domain.OrderStatusConfirmed,
	domain.OrderStatusPickedUp,
	domain.OrderStatusOverdue,
}

func (s *returnService) ProcessReturn(ctx context.Context, req ReturnRequest) (*domain.Return, error) {
	logger.EnterMethod("returnService.ProcessReturn", "orderID", req.OrderID, "items", len(req.Items))

	damageFee := decimal.Zero
	if req.DamageFee != nil {
		if req.DamageFee.IsNegative() {
			err := domain.NewValidationError("damage_fee", "must not be negative")
			logger.ExitMethodWithWarning("returnService.ProcessReturn", err)
			return nil, err
		}
		damageFee = req.DamageFee.Round(2)
	}

	now := s.now().UTC()
	returnDate := utils.DateOnly(now)
	if req.ReturnDate != nil {
		returnDate = utils.DateOnly(*req.ReturnDate)
	}

	var ret *domain.Return
	var order *domain.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		order, err = repos.Orders.GetForUpdate(ctx, req.OrderID)
		if err != nil {
			return err
		}
		if order.Status == domain.OrderStatusReturned {
			return &domain.InvalidStateError{Entity: "order", ID: order.ID, Reason: "already returned"}
		}
		if !order.Status.Returnable() {
			return &domain.InvalidStateError{Entity: "order", ID: order.ID, Reason: fmt.Sprintf("cannot return order in status %s", order.Status)}
		}
		if _, err := repos.Returns.GetByOrderID(ctx, order.ID); err == nil {
			return &domain.InvalidStateError{Entity: "order", ID: order.ID, Reason: "already returned"}
		} else if !domain.IsNotFound(err) {
			return err
		}

		lines, err := repos.Orders.ListLines(ctx, order.ID)
		if err != nil {
			return err
		}
		items, err := resolveReturnItems(lines, req.Items)
		if err != nil {
			return err
		}
		if returnDate.Before(order.RentalStart) {
			return domain.NewValidationError("return_date", "must not be before the rental start")
		}

		fee := utils.CalculateLateFee(order.Subtotal, order.RentalStart, order.RentalEnd, returnDate)
		ret = &domain.Return{
			OrderID:     order.ID,
			ReturnDate:  returnDate,
			LateDays:    int32(fee.LateDays),
			LateFee:     fee.Fee,
			DamageFee:   damageFee,
			Items:       items,
			Notes:       req.Notes,
			ProcessedBy: req.ProcessedBy,
		}
		if err := repos.Returns.Create(ctx, ret); err != nil {
			return fmt.Errorf("failed to create return: %w", err)
		}

		ok, err := repos.Orders.TransitionStatus(ctx, order.ID, returnableStatuses, domain.OrderStatusReturned)
		if err != nil {
			return err
		}
		if !ok {
			return &domain.InvalidStateError{Entity: "order", ID: order.ID, Reason: "status changed concurrently"}
		}
		order.Status = domain.OrderStatusReturned

		if _, err := repos.Reservations.ReleaseByOrder(ctx, order.ID, now); err != nil {
			return fmt.Errorf("failed to release reservations: %w", err)
		}

		for _, item := range items {
			if err := repos.StockMovements.Create(ctx, &domain.StockMovement{
				ProductID:    item.ProductID,
				Quantity:     item.Quantity,
				MovementType: domain.MovementTypeReturn,
				ReferenceID:  order.ID,
				Note:         fmt.Sprintf("returned %s", item.Condition),
			}); err != nil {
				return fmt.Errorf("failed to record stock movement: %w", err)
			}
		}

		if err := writeOffMissing(ctx, repos, order.ID, missingUnits(lines, items)); err != nil {
			return err
		}

		return completeOpenPickup(ctx, repos, order.ID, now)
	})
	if err != nil {
		var invalid *domain.InvalidStateError
		var validation *domain.ValidationError
		if errors.As(err, &invalid) || errors.As(err, &validation) {
			logger.ExitMethodWithWarning("returnService.ProcessReturn", err, "orderID", req.OrderID)
		} else {
			logger.ExitMethodWithError("returnService.ProcessReturn", err, "orderID", req.OrderID)
		}
		return nil, err
	}

	s.notifier.Publish(context.WithoutCancel(ctx), messaging.NewOrderEvent(messaging.EventOrderReturned, order.ID, order.OrderNumber, map[string]any{
		"late_days":  ret.LateDays,
		"late_fee":   ret.LateFee,
		"damage_fee": ret.DamageFee,
	}))

	logger.ExitMethod("returnService.ProcessReturn", "returnID", ret.ID, "lateDays", ret.LateDays, "lateFee", ret.LateFee)
	return ret, nil
}

// resolveReturnItems validates requested items against the order's RENTAL
// lines. No items means everything rented came back in good condition.
func resolveReturnItems(lines []domain.OrderLine, requested []ReturnItemInput) ([]domain.ReturnItem, error) {
	rented := map[int32]int32{}
	sold := map[int32]bool{}
	var order []int32
	for _, l := range lines {
		switch l.Type {
		case domain.LineTypeRental:
			if _, ok := rented[l.ProductID]; !ok {
				order = append(order, l.ProductID)
			}
			rented[l.ProductID] += l.Quantity
		case domain.LineTypeSale:
			sold[l.ProductID] = true
		}
	}
	if len(rented) == 0 {
		return nil, domain.NewValidationError("items", "order has no rental lines to return")
	}

	if len(requested) == 0 {
		items := make([]domain.ReturnItem, 0, len(order))
		for _, productID := range order {
			items = append(items, domain.ReturnItem{ProductID: productID, Quantity: rented[productID], Condition: domain.ItemConditionGood})
		}
		return items, nil
	}

	claimed := map[int32]int32{}
	items := make([]domain.ReturnItem, 0, len(requested))
	for i, in := range requested {
		field := fmt.Sprintf("items[%d]", i)
		qty, ok := rented[in.ProductID]
		if !ok {
			if sold[in.ProductID] {
				return nil, domain.NewValidationError(field, fmt.Sprintf("product %d was sold, not rented", in.ProductID))
			}
			return nil, domain.NewValidationError(field, fmt.Sprintf("product %d is not on this order", in.ProductID))
		}
		if in.Quantity < 1 || claimed[in.ProductID]+in.Quantity > qty {
			return nil, domain.NewValidationError(field, fmt.Sprintf("quantity must be between 1 and %d", qty-claimed[in.ProductID]))
		}
		condition := in.Condition
		if condition == "" {
			condition = domain.ItemConditionGood
		}
		if !condition.Valid() {
			return nil, domain.NewValidationError(field, fmt.Sprintf("unknown condition %q", in.Condition))
		}
		claimed[in.ProductID] += in.Quantity
		items = append(items, domain.ReturnItem{ProductID: in.ProductID, Quantity: in.Quantity, Condition: condition})
	}
	return items, nil
}

type unreturned struct {
	productID int32
	quantity  int32
}

// missingUnits lists rented units absent from the return, per product in
// line order.
func missingUnits(lines []domain.OrderLine, items []domain.ReturnItem) []unreturned {
	back := map[int32]int32{}
	for _, it := range items {
		back[it.ProductID] += it.Quantity
	}
	rented := map[int32]int32{}
	var order []int32
	for _, l := range lines {
		if l.Type != domain.LineTypeRental {
			continue
		}
		if _, ok := rented[l.ProductID]; !ok {
			order = append(order, l.ProductID)
		}
		rented[l.ProductID] += l.Quantity
	}
	var missing []unreturned
	for _, productID := range order {
		if n := rented[productID] - back[productID]; n > 0 {
			missing = append(missing, unreturned{productID: productID, quantity: n})
		}
	}
	return missing
}

// writeOffMissing takes units that did not come back out of on-hand stock so
// releasing the reservations cannot turn them into bookable inventory. The
// write-off is capped at what is still on hand.
func writeOffMissing(ctx context.Context, repos *repository.Repositories, orderID int32, missing []unreturned) error {
	if len(missing) == 0 {
		return nil
	}
	ids := make([]int32, 0, len(missing))
	for _, m := range missing {
		ids = append(ids, m.productID)
	}
	products, err := repos.Products.LockForUpdate(ctx, ids)
	if err != nil {
		return err
	}
	onHand := make(map[int32]int32, len(products))
	for _, p := range products {
		onHand[p.ID] = p.QuantityOnHand
	}

	for _, m := range missing {
		qty := min(m.quantity, onHand[m.productID])
		if qty <= 0 {
			logger.Warn("Nothing on hand to write off", "orderID", orderID, "productID", m.productID, "missing", m.quantity)
			continue
		}
		if err := repos.Products.DecrementStock(ctx, m.productID, qty); err != nil {
			return fmt.Errorf("failed to write off product %d: %w", m.productID, err)
		}
		if err := repos.StockMovements.Create(ctx, &domain.StockMovement{
			ProductID:    m.productID,
			Quantity:     -qty,
			MovementType: domain.MovementTypeWriteOff,
			ReferenceID:  orderID,
			Note:         fmt.Sprintf("%d unit(s) not returned", m.quantity),
		}); err != nil {
			return fmt.Errorf("failed to record stock movement: %w", err)
		}
	}
	return nil
}

func completeOpenPickup(ctx context.Context, repos *repository.Repositories, orderID int32, at time.Time) error {
	p, err := repos.Pickups.GetByOrderID(ctx, orderID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		return err
	}
	if p.Status == domain.PickupStatusCompleted {
		return nil
	}
	p.Status = domain.PickupStatusCompleted
	p.CompletedAt = &at
	return repos.Pickups.Update(ctx, p)
}

package service

import (
	"context"
	"time"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/repository"
)

type pickupService struct {
	store repository.Store
	now   func() time.Time
}

func NewPickupService(store repository.Store) PickupService {
	return &pickupService{store: store, now: time.Now}
}

func (s *pickupService) MarkReady(ctx context.Context, orderID int32) (*domain.Pickup, error) {
	logger.EnterMethod("pickupService.MarkReady", "orderID", orderID)

	var pickup *domain.Pickup
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		p, err := repos.Pickups.GetByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		switch p.Status {
		case domain.PickupStatusReady:
			pickup = p
			return nil
		case domain.PickupStatusCompleted:
			return &domain.InvalidStateError{Entity: "pickup", ID: p.ID, Reason: "pickup already completed"}
		}

		at := s.now().UTC()
		p.Status = domain.PickupStatusReady
		p.ReadyAt = &at
		if err := repos.Pickups.Update(ctx, p); err != nil {
			return err
		}
		pickup = p
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("pickupService.MarkReady", err, "orderID", orderID)
		return nil, err
	}

	logger.ExitMethod("pickupService.MarkReady", "pickupID", pickup.ID)
	return pickup, nil
}

// CompletePickup hands the goods over. A CONFIRMED order moves to PICKED_UP;
// an order already marked OVERDUE keeps that status.
func (s *pickupService) CompletePickup(ctx context.Context, orderID int32) (*domain.Pickup, error) {
	logger.EnterMethod("pickupService.CompletePickup", "orderID", orderID)

	var pickup *domain.Pickup
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		order, err := repos.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == domain.OrderStatusReturned {
			return &domain.InvalidStateError{Entity: "order", ID: order.ID, Reason: "order already returned"}
		}

		p, err := repos.Pickups.GetByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		if p.Status == domain.PickupStatusCompleted {
			return &domain.InvalidStateError{Entity: "pickup", ID: p.ID, Reason: "pickup already completed"}
		}

		at := s.now().UTC()
		if p.ReadyAt == nil {
			p.ReadyAt = &at
		}
		p.Status = domain.PickupStatusCompleted
		p.CompletedAt = &at
		if err := repos.Pickups.Update(ctx, p); err != nil {
			return err
		}

		if _, err := repos.Orders.TransitionStatus(ctx, orderID,
			[]domain.OrderStatus{domain.OrderStatusConfirmed}, domain.OrderStatusPickedUp); err != nil {
			return err
		}
		pickup = p
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("pickupService.CompletePickup", err, "orderID", orderID)
		return nil, err
	}

	logger.ExitMethod("pickupService.CompletePickup", "pickupID", pickup.ID)
	return pickup, nil
}

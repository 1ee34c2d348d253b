package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/repository"
)

type pickupRepository struct {
	db dbtx
}

func NewPickupRepository(db dbtx) repository.PickupRepository {
	return &pickupRepository{db: db}
}

func (r *pickupRepository) Create(ctx context.Context, p *domain.Pickup) error {
	items, err := json.Marshal(p.Items)
	if err != nil {
		return err
	}
	query := `INSERT INTO pickups (pickup_number, order_id, items, status, created_on)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	p.CreatedOn = time.Now().UTC()
	logger.DatabaseCall("INSERT", "pickups", "orderID", p.OrderID, "pickupNumber", p.PickupNumber)
	err = r.db.QueryRowContext(ctx, query, p.PickupNumber, p.OrderID, items, p.Status, p.CreatedOn).Scan(&p.ID)
	logger.DatabaseResult("INSERT", 1, err, "pickupID", p.ID)
	return err
}

func (r *pickupRepository) GetByOrderID(ctx context.Context, orderID int32) (*domain.Pickup, error) {
	p := &domain.Pickup{}
	var items []byte
	var readyAt, completedAt sql.NullTime
	query := `SELECT id, pickup_number, order_id, items, status, ready_at, completed_at, created_on FROM pickups WHERE order_id = $1`
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(&p.ID, &p.PickupNumber, &p.OrderID, &items, &p.Status, &readyAt, &completedAt, &p.CreatedOn)
	if err != nil {
		return nil, notFound(err, "pickup for order", orderID)
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &p.Items); err != nil {
			return nil, err
		}
	}
	if readyAt.Valid {
		p.ReadyAt = &readyAt.Time
	}
	if completedAt.Valid {
		p.CompletedAt = &completedAt.Time
	}
	return p, nil
}

func (r *pickupRepository) Update(ctx context.Context, p *domain.Pickup) error {
	query := `UPDATE pickups SET status = $1, ready_at = $2, completed_at = $3 WHERE id = $4`
	logger.DatabaseCall("UPDATE", "pickups", "pickupID", p.ID, "status", p.Status)
	_, err := r.db.ExecContext(ctx, query, p.Status, p.ReadyAt, p.CompletedAt, p.ID)
	logger.DatabaseResult("UPDATE", 1, err)
	return err
}

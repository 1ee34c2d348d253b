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

type returnRepository struct {
	db dbtx
}

func NewReturnRepository(db dbtx) repository.ReturnRepository {
	return &returnRepository{db: db}
}

func (r *returnRepository) Create(ctx context.Context, ret *domain.Return) error {
	items, err := json.Marshal(ret.Items)
	if err != nil {
		return err
	}
	query := `INSERT INTO returns (order_id, return_date, late_days, late_fee, damage_fee, items, notes, processed_by, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	ret.CreatedOn = time.Now().UTC()
	logger.DatabaseCall("INSERT", "returns", "orderID", ret.OrderID, "lateDays", ret.LateDays)
	err = r.db.QueryRowContext(ctx, query, ret.OrderID, ret.ReturnDate, ret.LateDays, ret.LateFee, ret.DamageFee, items,
		ret.Notes, ret.ProcessedBy, ret.CreatedOn).Scan(&ret.ID)
	logger.DatabaseResult("INSERT", 1, err, "returnID", ret.ID)
	return err
}

func (r *returnRepository) GetByOrderID(ctx context.Context, orderID int32) (*domain.Return, error) {
	ret := &domain.Return{}
	var items []byte
	var processedBy sql.NullInt32
	query := `SELECT id, order_id, return_date, late_days, late_fee, damage_fee, items, notes, processed_by, created_on
	          FROM returns WHERE order_id = $1`
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(&ret.ID, &ret.OrderID, &ret.ReturnDate, &ret.LateDays, &ret.LateFee,
		&ret.DamageFee, &items, &ret.Notes, &processedBy, &ret.CreatedOn)
	if err != nil {
		return nil, notFound(err, "return for order", orderID)
	}
	ret.ReturnDate = dateFromNull(sql.NullTime{Time: ret.ReturnDate, Valid: true})
	if len(items) > 0 {
		if err := json.Unmarshal(items, &ret.Items); err != nil {
			return nil, err
		}
	}
	if processedBy.Valid {
		ret.ProcessedBy = &processedBy.Int32
	}
	return ret, nil
}

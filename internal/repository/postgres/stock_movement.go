package postgres

import (
	"context"
	"time"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/repository"
)

type stockMovementRepository struct {
	db dbtx
}

func NewStockMovementRepository(db dbtx) repository.StockMovementRepository {
	return &stockMovementRepository{db: db}
}

func (r *stockMovementRepository) Create(ctx context.Context, m *domain.StockMovement) error {
	query := `INSERT INTO stock_movements (product_id, quantity, movement_type, reference_id, note, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	m.CreatedOn = time.Now().UTC()
	logger.DatabaseCall("INSERT", "stock_movements", "productID", m.ProductID, "type", m.MovementType, "quantity", m.Quantity)
	err := r.db.QueryRowContext(ctx, query, m.ProductID, m.Quantity, m.MovementType, m.ReferenceID, m.Note, m.CreatedOn).Scan(&m.ID)
	logger.DatabaseResult("INSERT", 1, err, "movementID", m.ID)
	return err
}

func (r *stockMovementRepository) ListByReference(ctx context.Context, orderID int32) ([]domain.StockMovement, error) {
	query := `SELECT id, product_id, quantity, movement_type, reference_id, note, created_on
	          FROM stock_movements WHERE reference_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.StockMovement
	for rows.Next() {
		var m domain.StockMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Quantity, &m.MovementType, &m.ReferenceID, &m.Note, &m.CreatedOn); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

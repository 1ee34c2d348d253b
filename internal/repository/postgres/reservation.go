package postgres

import (
	"context"
	"database/sql"
	"time"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/repository"
)

type reservationRepository struct {
	db dbtx
}

func NewReservationRepository(db dbtx) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

const reservationColumns = `id, order_id, product_id, quantity, from_date, to_date, status, released_at, created_on`

func (r *reservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	query := `INSERT INTO reservations (order_id, product_id, quantity, from_date, to_date, status, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	res.CreatedOn = time.Now().UTC()
	if res.Status == "" {
		res.Status = domain.ReservationStatusActive
	}
	logger.DatabaseCall("INSERT", "reservations", "orderID", res.OrderID, "productID", res.ProductID, "quantity", res.Quantity)
	err := r.db.QueryRowContext(ctx, query, res.OrderID, res.ProductID, res.Quantity, res.FromDate, res.ToDate, res.Status, res.CreatedOn).Scan(&res.ID)
	logger.DatabaseResult("INSERT", 1, err, "reservationID", res.ID)
	return err
}

func (r *reservationRepository) ListActiveOverlapping(ctx context.Context, productID int32, from, to time.Time) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
	          WHERE product_id = $1 AND status = $2 AND from_date <= $4 AND to_date >= $3
	          ORDER BY id`
	return r.list(ctx, query, productID, domain.ReservationStatusActive, from, to)
}

func (r *reservationRepository) ListByOrder(ctx context.Context, orderID int32) ([]domain.Reservation, error) {
	return r.list(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE order_id = $1 ORDER BY id`, orderID)
}

func (r *reservationRepository) ReleaseByOrder(ctx context.Context, orderID int32, at time.Time) (int64, error) {
	query := `UPDATE reservations SET status = $1, released_at = $2 WHERE order_id = $3 AND status = $4`
	logger.DatabaseCall("UPDATE", "reservations", "orderID", orderID)
	result, err := r.db.ExecContext(ctx, query, domain.ReservationStatusReleased, at, orderID, domain.ReservationStatusActive)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return 0, err
	}
	affected, err := result.RowsAffected()
	logger.DatabaseResult("UPDATE", affected, err)
	return affected, err
}

func (r *reservationRepository) list(ctx context.Context, query string, args ...any) ([]domain.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		var releasedAt sql.NullTime
		if err := rows.Scan(&res.ID, &res.OrderID, &res.ProductID, &res.Quantity, &res.FromDate, &res.ToDate, &res.Status, &releasedAt, &res.CreatedOn); err != nil {
			return nil, err
		}
		res.FromDate = dateFromNull(sql.NullTime{Time: res.FromDate, Valid: true})
		res.ToDate = dateFromNull(sql.NullTime{Time: res.ToDate, Valid: true})
		if releasedAt.Valid {
			res.ReleasedAt = &releasedAt.Time
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

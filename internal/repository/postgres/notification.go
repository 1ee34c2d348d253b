package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/repository"
)

type notificationRepository struct {
	db dbtx
}

func NewNotificationRepository(db dbtx) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) CreateIfAbsent(ctx context.Context, n *domain.Notification) (bool, error) {
	logger.EnterMethod("notificationRepository.CreateIfAbsent", "userID", n.UserID, "type", n.Type, "referenceID", n.ReferenceID)

	attrs, err := json.Marshal(n.Attributes)
	if err != nil {
		logger.ExitMethodWithError("notificationRepository.CreateIfAbsent", err, "reason", "failed to marshal attributes")
		return false, err
	}

	query := `INSERT INTO notifications (user_id, type, reference_id, date_bucket, title, message, is_read, attributes, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          ON CONFLICT (user_id, type, reference_id, date_bucket) DO NOTHING RETURNING id`
	logger.DatabaseCall("INSERT", "notifications", "userID", n.UserID, "type", n.Type)

	n.CreatedOn = time.Now().UTC()
	err = r.db.QueryRowContext(ctx, query, n.UserID, n.Type, n.ReferenceID, n.DateBucket, n.Title, n.Message, n.IsRead, attrs, n.CreatedOn).Scan(&n.ID)
	if errors.Is(err, sql.ErrNoRows) {
		logger.DatabaseResult("INSERT", 0, nil, "duplicate", true)
		logger.ExitMethod("notificationRepository.CreateIfAbsent", "created", false)
		return false, nil
	}
	logger.DatabaseResult("INSERT", 1, err, "notificationID", n.ID)

	if err != nil {
		logger.ExitMethodWithError("notificationRepository.CreateIfAbsent", err, "userID", n.UserID)
		return false, err
	}
	logger.ExitMethod("notificationRepository.CreateIfAbsent", "notificationID", n.ID)
	return true, nil
}

func (r *notificationRepository) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	var count int32
	countQuery := `SELECT count(*) FROM notifications WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, user_id, type, reference_id, date_bucket, title, message, is_read, attributes, created_on
	          FROM notifications WHERE user_id = $1 ORDER BY created_on DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var attrs []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.ReferenceID, &n.DateBucket, &n.Title, &n.Message, &n.IsRead, &attrs, &n.CreatedOn); err != nil {
			return nil, 0, err
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &n.Attributes); err != nil {
				return nil, 0, err
			}
		}
		notes = append(notes, n)
	}
	return notes, count, rows.Err()
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID int32) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.NewNotFoundError("notification", id)
	}
	return nil
}

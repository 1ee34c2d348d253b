package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/repository"

	_ "github.com/lib/pq"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so every repository can run
// inside or outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	repository.Repositories
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:           db,
		Repositories: *newRepositories(db),
	}
}

func newRepositories(db dbtx) *repository.Repositories {
	return &repository.Repositories{
		Users:          NewUserRepository(db),
		Addresses:      NewAddressRepository(db),
		Products:       NewProductRepository(db),
		Quotations:     NewQuotationRepository(db),
		Orders:         NewOrderRepository(db),
		Reservations:   NewReservationRepository(db),
		Invoices:       NewInvoiceRepository(db),
		Pickups:        NewPickupRepository(db),
		Returns:        NewReturnRepository(db),
		StockMovements: NewStockMovementRepository(db),
		Notifications:  NewNotificationRepository(db),
		Sequences:      NewSequenceRepository(db),
	}
}

func (s *Store) Repos() *repository.Repositories {
	return &s.Repositories
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// WithinTx runs fn in a READ COMMITTED transaction. Serialization of
// competing confirmations comes from the FOR UPDATE row locks taken inside fn.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos *repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		logger.Error("Failed to begin transaction", "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, newRepositories(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Failed to commit transaction", "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// InitDB opens the connection pool and applies the schema.
func InitDB(dsn string, maxOpen, maxIdle int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(context.Background(), db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("Database connected and migrated")
	return db, nil
}

func notFound(err error, entity string, id int32) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFoundError(entity, id)
	}
	return err
}

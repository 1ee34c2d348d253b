package postgres

import (
	"context"
	"database/sql"
	"time"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/repository"
)

type userRepository struct {
	db dbtx
}

func NewUserRepository(db dbtx) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (email, name, created_on) VALUES ($1, $2, $3) RETURNING id`
	u.CreatedOn = time.Now().UTC()
	logger.DatabaseCall("INSERT", "users", "email", u.Email)
	err := r.db.QueryRowContext(ctx, query, u.Email, u.Name, u.CreatedOn).Scan(&u.ID)
	logger.DatabaseResult("INSERT", 1, err, "userID", u.ID)
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT id, email, name, created_on FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedOn)
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return u, nil
}

type addressRepository struct {
	db dbtx
}

func NewAddressRepository(db dbtx) repository.AddressRepository {
	return &addressRepository{db: db}
}

const addressColumns = `id, user_id, line1, city, postal_code, country, is_default, is_placeholder, created_on`

func (r *addressRepository) Create(ctx context.Context, a *domain.Address) error {
	query := `INSERT INTO addresses (user_id, line1, city, postal_code, country, is_default, is_placeholder, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	a.CreatedOn = time.Now().UTC()
	logger.DatabaseCall("INSERT", "addresses", "userID", a.UserID, "placeholder", a.IsPlaceholder)
	err := r.db.QueryRowContext(ctx, query, a.UserID, a.Line1, a.City, a.PostalCode, a.Country, a.IsDefault, a.IsPlaceholder, a.CreatedOn).Scan(&a.ID)
	logger.DatabaseResult("INSERT", 1, err, "addressID", a.ID)
	return err
}

func (r *addressRepository) GetByID(ctx context.Context, id int32) (*domain.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1`
	a, err := scanAddress(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "address", id)
	}
	return a, nil
}

func (r *addressRepository) GetDefault(ctx context.Context, userID int32) (*domain.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 AND is_default = TRUE ORDER BY id LIMIT 1`
	a, err := scanAddress(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, notFound(err, "default address for user", userID)
	}
	return a, nil
}

func scanAddress(row *sql.Row) (*domain.Address, error) {
	a := &domain.Address{}
	err := row.Scan(&a.ID, &a.UserID, &a.Line1, &a.City, &a.PostalCode, &a.Country, &a.IsDefault, &a.IsPlaceholder, &a.CreatedOn)
	if err != nil {
		return nil, err
	}
	return a, nil
}

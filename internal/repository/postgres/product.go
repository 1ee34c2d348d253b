package postgres

import (
	"context"
	"fmt"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/repository"

	"github.com/lib/pq"
)

type productRepository struct {
	db dbtx
}

func NewProductRepository(db dbtx) repository.ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, vendor_id, name, quantity_on_hand, sale_price, cost_price`

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `INSERT INTO products (vendor_id, name, quantity_on_hand, sale_price, cost_price)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	logger.DatabaseCall("INSERT", "products", "vendorID", p.VendorID, "name", p.Name)
	err := r.db.QueryRowContext(ctx, query, p.VendorID, p.Name, p.QuantityOnHand, p.SalePrice, p.CostPrice).Scan(&p.ID)
	logger.DatabaseResult("INSERT", 1, err, "productID", p.ID)
	return err
}

func (r *productRepository) GetByID(ctx context.Context, id int32) (*domain.Product, error) {
	p := &domain.Product{}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.VendorID, &p.Name, &p.QuantityOnHand, &p.SalePrice, &p.CostPrice)
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	return p, nil
}

func (r *productRepository) LockForUpdate(ctx context.Context, ids []int32) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`
	logger.DatabaseCall("SELECT FOR UPDATE", "products", "ids", ids)
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		logger.DatabaseResult("SELECT FOR UPDATE", 0, err)
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	found := make(map[int32]bool, len(ids))
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.VendorID, &p.Name, &p.QuantityOnHand, &p.SalePrice, &p.CostPrice); err != nil {
			return nil, err
		}
		found[p.ID] = true
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult("SELECT FOR UPDATE", int64(len(products)), nil)

	for _, id := range ids {
		if !found[id] {
			return nil, domain.NewNotFoundError("product", id)
		}
	}
	return products, nil
}

func (r *productRepository) DecrementStock(ctx context.Context, id, quantity int32) error {
	query := `UPDATE products SET quantity_on_hand = quantity_on_hand - $1 WHERE id = $2 AND quantity_on_hand >= $1`
	logger.DatabaseCall("UPDATE", "products", "productID", id, "decrement", quantity)
	result, err := r.db.ExecContext(ctx, query, quantity, id)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("UPDATE", affected, nil)
	if affected == 0 {
		p, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return &domain.InsufficientStockError{ProductID: id, Requested: quantity, Available: p.QuantityOnHand}
	}
	return nil
}

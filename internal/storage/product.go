package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/linemk/shop-orders/internal/domain/models"
)

var ErrProductNotFound = errors.New("product not found")

// ProductStorage описывает чтение каталога товаров.
type ProductStorage interface {
	// GetProductByID получает актуальные данные товара вне транзакции.
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	// LockProductsTx читает товары с блокировкой FOR SHARE в рамках транзакции оформления.
	// Отсутствующие товары в результат не попадают.
	LockProductsTx(ctx context.Context, tx *sql.Tx, ids []int64) (map[int64]*models.Product, error)
}

// productRepository — конкретная реализация ProductStorage.
type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт новый репозиторий каталога.
func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

const selectProduct = "SELECT id, name, price, discount_price, images FROM products"

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	product := &models.Product{}
	row := r.db.QueryRowContext(ctx, selectProduct+" WHERE id = $1", id)
	if err := row.Scan(&product.ID, &product.Name, &product.Price, &product.DiscountPrice, pq.Array(&product.Images)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (r *productRepository) LockProductsTx(ctx context.Context, tx *sql.Tx, ids []int64) (map[int64]*models.Product, error) {
	query := selectProduct + " WHERE id = ANY($1) ORDER BY id FOR SHARE"
	rows, err := tx.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}
	defer rows.Close()

	products := make(map[int64]*models.Product, len(ids))
	for rows.Next() {
		product := &models.Product{}
		if err := rows.Scan(&product.ID, &product.Name, &product.Price, &product.DiscountPrice, pq.Array(&product.Images)); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products[product.ID] = product
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

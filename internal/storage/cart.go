package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/linemk/shop-orders/internal/domain/models"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartStorage описывает методы для работы с корзинами и их позициями.
type CartStorage interface {
	// GetOrCreateCart возвращает корзину пользователя, создавая её при первом обращении.
	GetOrCreateCart(ctx context.Context, userID int64) (*models.Cart, error)
	// GetCartByUserID возвращает корзину без создания.
	GetCartByUserID(ctx context.Context, userID int64) (*models.Cart, error)
	// LockCartByUserIDTx блокирует строку корзины до конца транзакции.
	LockCartByUserIDTx(ctx context.Context, tx *sql.Tx, userID int64) (*models.Cart, error)
	// GetCartItemsTx возвращает позиции корзины внутри транзакции, без данных товара.
	GetCartItemsTx(ctx context.Context, tx *sql.Tx, cartID int64) ([]*models.CartItem, error)
	// GetCartItemsWithProducts возвращает позиции с актуальными данными товара (JOIN с products).
	GetCartItemsWithProducts(ctx context.Context, cartID int64) ([]*models.CartItem, error)
	// UpsertItem добавляет позицию или увеличивает количество у существующей.
	UpsertItem(ctx context.Context, cartID, productID int64, quantity int) error
	// UpdateItemQuantity выставляет количество у существующей позиции.
	UpdateItemQuantity(ctx context.Context, cartID, productID int64, quantity int) error
	// RemoveItem удаляет позицию.
	RemoveItem(ctx context.Context, cartID, productID int64) error
	// ClearCartTx удаляет все позиции корзины в рамках транзакции.
	ClearCartTx(ctx context.Context, tx *sql.Tx, cartID int64) error
}

// cartRepository — конкретная реализация CartStorage.
type cartRepository struct {
	db *sql.DB
}

// NewCartRepository создаёт новый репозиторий корзин.
func NewCartRepository(db *sql.DB) CartStorage {
	return &cartRepository{db: db}
}

// GetOrCreateCart использует ON CONFLICT, чтобы параллельные запросы не создали две корзины.
func (r *cartRepository) GetOrCreateCart(ctx context.Context, userID int64) (*models.Cart, error) {
	query := `
		INSERT INTO carts (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = carts.updated_at
		RETURNING id, user_id, created_at, updated_at`
	cart := &models.Cart{}
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to get or create cart: %w", err)
	}
	return cart, nil
}

func (r *cartRepository) GetCartByUserID(ctx context.Context, userID int64) (*models.Cart, error) {
	return scanCart(r.db.QueryRowContext(ctx,
		"SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1", userID))
}

func (r *cartRepository) LockCartByUserIDTx(ctx context.Context, tx *sql.Tx, userID int64) (*models.Cart, error) {
	return scanCart(tx.QueryRowContext(ctx,
		"SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1 FOR UPDATE", userID))
}

func (r *cartRepository) GetCartItemsTx(ctx context.Context, tx *sql.Tx, cartID int64) ([]*models.CartItem, error) {
	query := `
		SELECT id, cart_id, product_id, quantity
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY id`
	rows, err := tx.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var items []*models.CartItem
	for rows.Next() {
		item := &models.CartItem{}
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *cartRepository) GetCartItemsWithProducts(ctx context.Context, cartID int64) ([]*models.CartItem, error) {
	query := `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity,
		       p.name, p.price, p.discount_price, p.images
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`
	rows, err := r.db.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var items []*models.CartItem
	for rows.Next() {
		item := &models.CartItem{Product: &models.Product{}}
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
			&item.Product.Name, &item.Product.Price, &item.Product.DiscountPrice, pq.Array(&item.Product.Images)); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		item.Product.ID = item.ProductID
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *cartRepository) UpsertItem(ctx context.Context, cartID, productID int64, quantity int) error {
	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`
	if _, err := r.db.ExecContext(ctx, query, cartID, productID, quantity); err != nil {
		if isPQCode(err, foreignKeyViolation) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}
	return r.touch(ctx, cartID)
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, cartID, productID int64, quantity int) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE cart_items SET quantity = $1 WHERE cart_id = $2 AND product_id = $3", quantity, cartID, productID)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	if err := requireAffected(res, ErrCartItemNotFound); err != nil {
		return err
	}
	return r.touch(ctx, cartID)
}

func (r *cartRepository) RemoveItem(ctx context.Context, cartID, productID int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2", cartID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if err := requireAffected(res, ErrCartItemNotFound); err != nil {
		return err
	}
	return r.touch(ctx, cartID)
}

func (r *cartRepository) ClearCartTx(ctx context.Context, tx *sql.Tx, cartID int64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id = $1", cartID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (r *cartRepository) touch(ctx context.Context, cartID int64) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE carts SET updated_at = NOW() WHERE id = $1", cartID); err != nil {
		return fmt.Errorf("failed to touch cart: %w", err)
	}
	return nil
}

func scanCart(row *sql.Row) (*models.Cart, error) {
	cart := &models.Cart{}
	if err := row.Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return cart, nil
}

func requireAffected(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

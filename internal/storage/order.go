package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/linemk/shop-orders/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	// CreateOrderTx вставляет заказ и заполняет ID, CreatedAt и UpdatedAt.
	CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) error
	// CreateOrderItemTx вставляет позицию заказа вместе со снимком товара.
	CreateOrderItemTx(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error
	// GetOrderByID возвращает заказ с позициями.
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	// LockOrderByIDTx блокирует строку заказа, позиции не загружаются.
	LockOrderByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error)
	// UpdateOrderStatusTx меняет статус и updated_at, возвращает новое updated_at.
	UpdateOrderStatusTx(ctx context.Context, tx *sql.Tx, id int64, status models.OrderStatus) (time.Time, error)
	// GetOrderItems возвращает позиции заказа.
	GetOrderItems(ctx context.Context, orderID int64) ([]*models.OrderItem, error)
	// GetOrdersByUserID возвращает заказы пользователя с позициями, новые первыми.
	GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error)
	// ListAllOrders возвращает все заказы с позициями и данными владельца, новые первыми.
	ListAllOrders(ctx context.Context) ([]*models.Order, error)
}

// orderRepository — конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

const selectOrder = "SELECT id, reference, user_id, total_amount, status, created_at, updated_at FROM orders"

// CreateOrderTx вставляет новый заказ в таблицу orders.
func (r *orderRepository) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	query := `INSERT INTO orders (reference, user_id, total_amount, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, NOW(), NOW())
	          RETURNING id, created_at, updated_at`
	err := tx.QueryRowContext(ctx, query, order.Reference, order.UserID, order.TotalAmount, order.Status).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// CreateOrderItemTx вставляет позицию; нарушение внешнего ключа означает, что товар уже удалён.
func (r *orderRepository) CreateOrderItemTx(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error {
	snapshot, err := json.Marshal(item.Product)
	if err != nil {
		return fmt.Errorf("failed to marshal product snapshot: %w", err)
	}
	query := `INSERT INTO order_items (order_id, product_id, quantity, price_at_order, product_snapshot)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`
	err = tx.QueryRowContext(ctx, query, item.OrderID, item.ProductID, item.Quantity, item.PriceAtOrder, snapshot).
		Scan(&item.ID)
	if err != nil {
		if isPQCode(err, foreignKeyViolation) {
			return fmt.Errorf("product %d: %w", item.ProductID, ErrProductNotFound)
		}
		return fmt.Errorf("failed to create order item: %w", err)
	}
	return nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, selectOrder+" WHERE id = $1", id))
	if err != nil {
		return nil, err
	}
	if order.Items, err = r.GetOrderItems(ctx, order.ID); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) LockOrderByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error) {
	return scanOrder(tx.QueryRowContext(ctx, selectOrder+" WHERE id = $1 FOR UPDATE", id))
}

func (r *orderRepository) UpdateOrderStatusTx(ctx context.Context, tx *sql.Tx, id int64, status models.OrderStatus) (time.Time, error) {
	var updatedAt time.Time
	err := tx.QueryRowContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at", status, id,
	).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, ErrOrderNotFound
		}
		return time.Time{}, fmt.Errorf("failed to update order status: %w", err)
	}
	return updatedAt, nil
}

func (r *orderRepository) GetOrderItems(ctx context.Context, orderID int64) ([]*models.OrderItem, error) {
	byOrder, err := r.itemsByOrderIDs(ctx, []int64{orderID})
	if err != nil {
		return nil, err
	}
	return byOrder[orderID], nil
}

// GetOrdersByUserID возвращает список заказов для пользователя вместе с позициями.
func (r *orderRepository) GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx, selectOrder+" WHERE user_id = $1 ORDER BY created_at DESC, id DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.Reference, &order.UserID, &order.TotalAmount, &order.Status, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return r.attachItems(ctx, orders)
}

// ListAllOrders возвращает все заказы с JOIN, чтобы получить публичные данные владельца.
func (r *orderRepository) ListAllOrders(ctx context.Context) ([]*models.Order, error) {
	query := `
		SELECT o.id, o.reference, o.user_id, o.total_amount, o.status, o.created_at, o.updated_at,
		       u.email, u.name
		FROM orders o
		JOIN users u ON o.user_id = u.id
		ORDER BY o.created_at DESC, o.id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{User: &models.OrderOwner{}}
		if err := rows.Scan(&order.ID, &order.Reference, &order.UserID, &order.TotalAmount, &order.Status, &order.CreatedAt, &order.UpdatedAt,
			&order.User.Email, &order.User.Name); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		order.User.ID = order.UserID
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return r.attachItems(ctx, orders)
}

// attachItems подгружает позиции одним запросом на весь список
func (r *orderRepository) attachItems(ctx context.Context, orders []*models.Order) ([]*models.Order, error) {
	if len(orders) == 0 {
		return orders, nil
	}
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	byOrder, err := r.itemsByOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.Items = byOrder[o.ID]
	}
	return orders, nil
}

func (r *orderRepository) itemsByOrderIDs(ctx context.Context, ids []int64) (map[int64][]*models.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, price_at_order, product_snapshot
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	byOrder := make(map[int64][]*models.OrderItem, len(ids))
	for rows.Next() {
		item := &models.OrderItem{}
		var snapshot []byte
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.PriceAtOrder, &snapshot); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if err := json.Unmarshal(snapshot, &item.Product); err != nil {
			return nil, fmt.Errorf("failed to decode product snapshot of item %d: %w", item.ID, err)
		}
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return byOrder, nil
}

func scanOrder(row *sql.Row) (*models.Order, error) {
	order := &models.Order{}
	if err := row.Scan(&order.ID, &order.Reference, &order.UserID, &order.TotalAmount, &order.Status, &order.CreatedAt, &order.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

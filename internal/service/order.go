package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/linemk/shop-orders/internal/domain/models"
	"github.com/linemk/shop-orders/internal/storage"
	"github.com/shopspring/decimal"
)

// PlaceOrderService оформляет заказ из корзины пользователя.
type PlaceOrderService interface {
	PlaceOrder(ctx context.Context, userID int64) (*OrderResponse, error)
}

type placeOrderService struct {
	log         *slog.Logger
	db          *sql.DB
	cartRepo    storage.CartStorage
	productRepo storage.ProductStorage
	orderRepo   storage.OrderStorage
}

func NewPlaceOrderService(log *slog.Logger, db *sql.DB, cartRepo storage.CartStorage, productRepo storage.ProductStorage, orderRepo storage.OrderStorage) PlaceOrderService {
	return &placeOrderService{
		log:         log,
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

// OrderResponse — заказ в форме, отдаваемой клиенту: у позиций есть subtotal,
// а product хранит снимок товара на момент оформления.
type OrderResponse struct {
	ID          int64               `json:"id"`
	Reference   uuid.UUID           `json:"reference"`
	UserID      int64               `json:"user_id"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	Status      models.OrderStatus  `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Items       []OrderItemResponse `json:"items"`
	User        *models.OrderOwner  `json:"user,omitempty"`
}

type OrderItemResponse struct {
	ID           int64                  `json:"id"`
	ProductID    int64                  `json:"product_id"`
	Quantity     int                    `json:"quantity"`
	PriceAtOrder decimal.Decimal        `json:"price_at_order"`
	Subtotal     decimal.Decimal        `json:"subtotal"`
	Product      models.ProductSnapshot `json:"product"`
}

// NewOrderResponse строит ответ только из сохранённых в заказе данных, без обращения к каталогу
func NewOrderResponse(order *models.Order) *OrderResponse {
	resp := &OrderResponse{
		ID:          order.ID,
		Reference:   order.Reference,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Status:      order.Status,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
		Items:       make([]OrderItemResponse, 0, len(order.Items)),
		User:        order.User,
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:           item.ID,
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			PriceAtOrder: item.PriceAtOrder,
			Subtotal:     item.Subtotal(),
			Product:      item.Product,
		})
	}
	return resp
}

func newOrderResponses(orders []*models.Order) []*OrderResponse {
	resp := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, NewOrderResponse(o))
	}
	return resp
}

// PlaceOrder превращает корзину в заказ.
// Чтение корзины и каталога, создание заказа и очистка корзины выполняются в одной транзакции;
// при любой ошибке транзакция откатывается и корзина остаётся нетронутой.
func (s *placeOrderService) PlaceOrder(ctx context.Context, userID int64) (*OrderResponse, error) {
	const op = "service.PlaceOrderService.PlaceOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))
	logger.Info("starting order placement transaction")

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, txFailure(op, "failed to begin transaction", err)
	}

	// Блокируем корзину: параллельное оформление того же пользователя дождётся коммита
	// и увидит уже пустую корзину
	cart, err := s.cartRepo.LockCartByUserIDTx(ctx, tx, userID)
	if err != nil {
		rollback(logger, tx)
		if errors.Is(err, storage.ErrCartNotFound) {
			logger.Warn("cart not found")
			return nil, fmt.Errorf("%s: %w", op, ErrEmptyCart)
		}
		logger.Error("failed to lock cart", slog.Any("error", err))
		return nil, txFailure(op, "failed to lock cart", err)
	}

	items, err := s.cartRepo.GetCartItemsTx(ctx, tx, cart.ID)
	if err != nil {
		rollback(logger, tx)
		logger.Error("failed to get cart items", slog.Any("error", err))
		return nil, txFailure(op, "failed to get cart items", err)
	}
	if len(items) == 0 {
		rollback(logger, tx)
		logger.Warn("cart is empty")
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyCart)
	}

	productIDs := make([]int64, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}

	// Цены читаем в той же транзакции: до коммита товар не изменится
	products, err := s.productRepo.LockProductsTx(ctx, tx, productIDs)
	if err != nil {
		rollback(logger, tx)
		logger.Error("failed to read products", slog.Any("error", err))
		return nil, txFailure(op, "failed to read products", err)
	}

	order := &models.Order{
		Reference:   uuid.New(),
		UserID:      userID,
		TotalAmount: decimal.Zero,
		Status:      models.OrderStatusPending,
		Items:       make([]*models.OrderItem, 0, len(items)),
	}
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			rollback(logger, tx)
			logger.Warn("product unavailable", slog.Int64("productID", item.ProductID))
			return nil, fmt.Errorf("%s: product %d: %w", op, item.ProductID, ErrProductUnavailable)
		}
		orderItem := &models.OrderItem{
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			PriceAtOrder: product.EffectivePrice(),
			Product:      product.Snapshot(),
		}
		order.TotalAmount = order.TotalAmount.Add(orderItem.Subtotal())
		order.Items = append(order.Items, orderItem)
	}

	if err := s.orderRepo.CreateOrderTx(ctx, tx, order); err != nil {
		rollback(logger, tx)
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, txFailure(op, "failed to create order", err)
	}

	for _, orderItem := range order.Items {
		orderItem.OrderID = order.ID
		if err := s.orderRepo.CreateOrderItemTx(ctx, tx, orderItem); err != nil {
			rollback(logger, tx)
			if errors.Is(err, storage.ErrProductNotFound) {
				logger.Warn("product removed during placement", slog.Int64("productID", orderItem.ProductID))
				return nil, fmt.Errorf("%s: product %d: %w", op, orderItem.ProductID, ErrProductUnavailable)
			}
			logger.Error("failed to create order item", slog.Any("error", err))
			return nil, txFailure(op, "failed to create order item", err)
		}
	}

	if err := s.cartRepo.ClearCartTx(ctx, tx, cart.ID); err != nil {
		rollback(logger, tx)
		logger.Error("failed to clear cart", slog.Any("error", err))
		return nil, txFailure(op, "failed to clear cart", err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, txFailure(op, "failed to commit transaction", err)
	}

	logger.Info("order placed successfully",
		slog.Int64("orderID", order.ID),
		slog.String("reference", order.Reference.String()),
		slog.String("total", order.TotalAmount.String()),
	)
	return NewOrderResponse(order), nil
}

func rollback(logger *slog.Logger, tx *sql.Tx) {
	if rbErr := tx.Rollback(); rbErr != nil {
		logger.Error("transaction rollback failed", slog.Any("error", rbErr))
	}
}

// txFailure сохраняет исходную ошибку в цепочке рядом с ErrTransactionFailure
func txFailure(op, msg string, err error) error {
	return fmt.Errorf("%s: %s: %w: %w", op, msg, ErrTransactionFailure, err)
}

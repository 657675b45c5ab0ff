package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/shop-orders/internal/domain/models"
	"github.com/linemk/shop-orders/internal/storage"
)

// OrderStatusService меняет статус заказа по запросу администратора или оператора.
type OrderStatusService interface {
	UpdateOrderStatus(ctx context.Context, orderID int64, newStatus string, actorRole string) (*OrderResponse, error)
}

type orderStatusService struct {
	log           *slog.Logger
	db            *sql.DB
	orderRepo     storage.OrderStorage
	allowOverride bool
}

// NewOrderStatusService создаёт сервис статусов.
// allowOverride отключает таблицу переходов (любой статус из любого).
func NewOrderStatusService(log *slog.Logger, db *sql.DB, orderRepo storage.OrderStorage, allowOverride bool) OrderStatusService {
	return &orderStatusService{
		log:           log,
		db:            db,
		orderRepo:     orderRepo,
		allowOverride: allowOverride,
	}
}

func (s *orderStatusService) UpdateOrderStatus(ctx context.Context, orderID int64, newStatus string, actorRole string) (*OrderResponse, error) {
	const op = "service.OrderStatusService.UpdateOrderStatus"
	logger := s.log.With(
		slog.String("op", op),
		slog.Int64("orderID", orderID),
		slog.String("status", newStatus),
		slog.String("role", actorRole),
	)

	if !models.IsPrivilegedRole(actorRole) {
		logger.Warn("status update denied")
		return nil, fmt.Errorf("%s: %w", op, ErrAccessDenied)
	}

	next := models.OrderStatus(newStatus)
	if !next.Valid() {
		return nil, fmt.Errorf("%s: unknown status %q: %w", op, newStatus, ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, txFailure(op, "failed to begin transaction", err)
	}

	// Блокируем заказ, чтобы проверка перехода и запись не разошлись
	order, err := s.orderRepo.LockOrderByIDTx(ctx, tx, orderID)
	if err != nil {
		rollback(logger, tx)
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, fmt.Errorf("%s: order %d: %w", op, orderID, ErrNotFound)
		}
		logger.Error("failed to lock order", slog.Any("error", err))
		return nil, txFailure(op, "failed to lock order", err)
	}

	if !s.allowOverride && !order.Status.CanTransitionTo(next) {
		rollback(logger, tx)
		logger.Warn("illegal status transition", slog.String("current", string(order.Status)))
		return nil, fmt.Errorf("%s: %s -> %s: %w", op, order.Status, next, ErrInvalidTransition)
	}

	updatedAt, err := s.orderRepo.UpdateOrderStatusTx(ctx, tx, orderID, next)
	if err != nil {
		rollback(logger, tx)
		logger.Error("failed to update order status", slog.Any("error", err))
		return nil, txFailure(op, "failed to update order status", err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, txFailure(op, "failed to commit transaction", err)
	}

	previous := order.Status
	order.Status = next
	order.UpdatedAt = updatedAt

	// Статус уже сохранён; ошибка чтения позиций не откатывает его
	order.Items, err = s.orderRepo.GetOrderItems(ctx, orderID)
	if err != nil {
		logger.Error("failed to load order items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to load order items: %w", op, err)
	}

	logger.Info("order status updated", slog.String("previous", string(previous)))
	return NewOrderResponse(order), nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/shop-orders/internal/domain/models"
	"github.com/linemk/shop-orders/internal/storage"
)

// OrderQueryService отдаёт заказы владельцу и привилегированным ролям.
type OrderQueryService interface {
	GetOrderByID(ctx context.Context, orderID, actorUserID int64, actorRole string) (*OrderResponse, error)
	ListOrdersForUser(ctx context.Context, userID int64) ([]*OrderResponse, error)
	ListAllOrders(ctx context.Context, actorRole string) ([]*OrderResponse, error)
}

type orderQueryService struct {
	log       *slog.Logger
	orderRepo storage.OrderStorage
}

func NewOrderQueryService(log *slog.Logger, orderRepo storage.OrderStorage) OrderQueryService {
	return &orderQueryService{
		log:       log,
		orderRepo: orderRepo,
	}
}

// GetOrderByID сначала проверяет существование заказа, затем права
func (s *orderQueryService) GetOrderByID(ctx context.Context, orderID, actorUserID int64, actorRole string) (*OrderResponse, error) {
	const op = "service.OrderQueryService.GetOrderByID"
	logger := s.log.With(
		slog.String("op", op),
		slog.Int64("orderID", orderID),
		slog.Int64("userID", actorUserID),
		slog.String("role", actorRole),
	)

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, fmt.Errorf("%s: order %d: %w", op, orderID, ErrNotFound)
		}
		logger.Error("failed to get order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get order: %w", op, err)
	}

	if order.UserID != actorUserID && !models.IsPrivilegedRole(actorRole) {
		logger.Warn("access to foreign order denied")
		return nil, fmt.Errorf("%s: %w", op, ErrAccessDenied)
	}

	return NewOrderResponse(order), nil
}

func (s *orderQueryService) ListOrdersForUser(ctx context.Context, userID int64) ([]*OrderResponse, error) {
	const op = "service.OrderQueryService.ListOrdersForUser"

	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to get orders", slog.String("op", op), slog.Int64("userID", userID), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get orders: %w", op, err)
	}
	return newOrderResponses(orders), nil
}

func (s *orderQueryService) ListAllOrders(ctx context.Context, actorRole string) ([]*OrderResponse, error) {
	const op = "service.OrderQueryService.ListAllOrders"
	logger := s.log.With(slog.String("op", op), slog.String("role", actorRole))

	if !models.IsPrivilegedRole(actorRole) {
		logger.Warn("listing all orders denied")
		return nil, fmt.Errorf("%s: %w", op, ErrAccessDenied)
	}

	orders, err := s.orderRepo.ListAllOrders(ctx)
	if err != nil {
		logger.Error("failed to list orders", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list orders: %w", op, err)
	}
	return newOrderResponses(orders), nil
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/shop-orders/internal/service"
)

// PlaceOrderHandler обрабатывает POST /api/orders: оформляет заказ из корзины текущего пользователя
func PlaceOrderHandler(log *slog.Logger, placeService service.PlaceOrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PlaceOrderHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFrom(logger, w, r)
		if !ok {
			return
		}

		order, err := placeService.PlaceOrder(r.Context(), actor.UserID)
		if err != nil {
			respondError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusCreated, order)
	}
}

// ListMyOrdersHandler обрабатывает GET /api/orders
func ListMyOrdersHandler(log *slog.Logger, queryService service.OrderQueryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListMyOrdersHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFrom(logger, w, r)
		if !ok {
			return
		}

		orders, err := queryService.ListOrdersForUser(r.Context(), actor.UserID)
		if err != nil {
			respondError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, orders)
	}
}

// GetOrderHandler обрабатывает GET /api/orders/{id}
func GetOrderHandler(log *slog.Logger, queryService service.OrderQueryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetOrderHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFrom(logger, w, r)
		if !ok {
			return
		}
		orderID, ok := pathID(logger, w, r, "id")
		if !ok {
			return
		}

		order, err := queryService.GetOrderByID(r.Context(), orderID, actor.UserID, actor.Role)
		if err != nil {
			respondError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, order)
	}
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/shop-orders/internal/service"
)

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListAllOrdersHandler обрабатывает GET /api/admin/orders
func ListAllOrdersHandler(log *slog.Logger, queryService service.OrderQueryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListAllOrdersHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFrom(logger, w, r)
		if !ok {
			return
		}

		orders, err := queryService.ListAllOrders(r.Context(), actor.Role)
		if err != nil {
			respondError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, orders)
	}
}

// UpdateOrderStatusHandler обрабатывает PATCH /api/admin/orders/{id}/status.
// Проверка роли и допустимости перехода выполняется сервисом.
func UpdateOrderStatusHandler(log *slog.Logger, statusService service.OrderStatusService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateOrderStatusHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFrom(logger, w, r)
		if !ok {
			return
		}
		orderID, ok := pathID(logger, w, r, "id")
		if !ok {
			return
		}

		var req UpdateOrderStatusRequest
		if !decodeAndValidate(logger, w, r, &req) {
			return
		}

		order, err := statusService.UpdateOrderStatus(r.Context(), orderID, req.Status, actor.Role)
		if err != nil {
			respondError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, order)
	}
}

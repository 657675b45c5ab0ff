package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/shop-orders/internal/service"
)

// AddCartItemRequest — тело POST /api/cart/items
type AddCartItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,min=1"`
}

// UpdateCartItemRequest — тело PATCH /api/cart/items/{productID}
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// GetCartHandler обрабатывает GET /api/cart
func GetCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetCartHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFrom(logger, w, r)
		if !ok {
			return
		}

		cart, err := cartService.GetCart(r.Context(), actor.UserID)
		if err != nil {
			respondError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, cart)
	}
}

func AddCartItemHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddCartItemHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFrom(logger, w, r)
		if !ok {
			return
		}

		var req AddCartItemRequest
		if !decodeAndValidate(logger, w, r, &req) {
			return
		}

		if err := cartService.AddItem(r.Context(), actor.UserID, req.ProductID, req.Quantity); err != nil {
			respondError(logger, w, err)
			return
		}
		writeCart(logger, w, r, cartService, actor.UserID, http.StatusCreated)
	}
}

func UpdateCartItemHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateCartItemHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFrom(logger, w, r)
		if !ok {
			return
		}
		productID, ok := pathID(logger, w, r, "productID")
		if !ok {
			return
		}

		var req UpdateCartItemRequest
		if !decodeAndValidate(logger, w, r, &req) {
			return
		}

		if err := cartService.UpdateItemQuantity(r.Context(), actor.UserID, productID, req.Quantity); err != nil {
			respondError(logger, w, err)
			return
		}
		writeCart(logger, w, r, cartService, actor.UserID, http.StatusOK)
	}
}

func RemoveCartItemHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RemoveCartItemHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFrom(logger, w, r)
		if !ok {
			return
		}
		productID, ok := pathID(logger, w, r, "productID")
		if !ok {
			return
		}

		if err := cartService.RemoveItem(r.Context(), actor.UserID, productID); err != nil {
			respondError(logger, w, err)
			return
		}
		writeCart(logger, w, r, cartService, actor.UserID, http.StatusOK)
	}
}

// после изменения отдаём корзину целиком
func writeCart(logger *slog.Logger, w http.ResponseWriter, r *http.Request, cartService service.CartService, userID int64, status int) {
	cart, err := cartService.GetCart(r.Context(), userID)
	if err != nil {
		respondError(logger, w, err)
		return
	}
	writeJSON(logger, w, status, cart)
}

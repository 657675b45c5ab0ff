package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/shop-orders/internal/storage"
	"github.com/shopspring/decimal"
)

// CartService управляет позициями корзины пользователя.
type CartService interface {
	GetCart(ctx context.Context, userID int64) (*CartView, error)
	AddItem(ctx context.Context, userID, productID int64, quantity int) error
	UpdateItemQuantity(ctx context.Context, userID, productID int64, quantity int) error
	RemoveItem(ctx context.Context, userID, productID int64) error
}

// CartView — содержимое корзины с актуальными ценами каталога
type CartView struct {
	Items []CartLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type CartLine struct {
	ProductID      int64           `json:"product_id"`
	Name           string          `json:"name"`
	Images         []string        `json:"images"`
	Quantity       int             `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type cartService struct {
	log         *slog.Logger
	cartRepo    storage.CartStorage
	productRepo storage.ProductStorage
}

func NewCartService(log *slog.Logger, cartRepo storage.CartStorage, productRepo storage.ProductStorage) CartService {
	return &cartService{
		log:         log,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetCart возвращает пустую корзину, если пользователь ещё ничего не добавлял
func (s *cartService) GetCart(ctx context.Context, userID int64) (*CartView, error) {
	const op = "service.CartService.GetCart"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	view := &CartView{Items: []CartLine{}, Total: decimal.Zero}

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrCartNotFound) {
			return view, nil
		}
		logger.Error("failed to get cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get cart: %w", op, err)
	}

	items, err := s.cartRepo.GetCartItemsWithProducts(ctx, cart.ID)
	if err != nil {
		logger.Error("failed to get cart items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get cart items: %w", op, err)
	}

	for _, item := range items {
		price := item.Product.EffectivePrice()
		subtotal := price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		view.Items = append(view.Items, CartLine{
			ProductID:      item.ProductID,
			Name:           item.Product.Name,
			Images:         item.Product.Images,
			Quantity:       item.Quantity,
			Price:          item.Product.Price,
			EffectivePrice: price,
			Subtotal:       subtotal,
		})
		view.Total = view.Total.Add(subtotal)
	}
	return view, nil
}

// AddItem добавляет товар в корзину; если он уже там, количество суммируется
func (s *cartService) AddItem(ctx context.Context, userID, productID int64, quantity int) error {
	const op = "service.CartService.AddItem"
	logger := s.log.With(
		slog.String("op", op),
		slog.Int64("userID", userID),
		slog.Int64("productID", productID),
		slog.Int("quantity", quantity),
	)

	if quantity < 1 {
		return fmt.Errorf("%s: quantity must be at least 1: %w", op, ErrInvalidInput)
	}

	if _, err := s.productRepo.GetProductByID(ctx, productID); err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			logger.Warn("product not found")
			return fmt.Errorf("%s: product %d: %w", op, productID, ErrProductUnavailable)
		}
		logger.Error("failed to get product", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get product: %w", op, err)
	}

	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		logger.Error("failed to get or create cart", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get cart: %w", op, err)
	}

	if err := s.cartRepo.UpsertItem(ctx, cart.ID, productID, quantity); err != nil {
		// товар могли удалить между проверкой и вставкой
		if errors.Is(err, storage.ErrProductNotFound) {
			return fmt.Errorf("%s: product %d: %w", op, productID, ErrProductUnavailable)
		}
		logger.Error("failed to add cart item", slog.Any("error", err))
		return fmt.Errorf("%s: failed to add cart item: %w", op, err)
	}

	logger.Info("item added to cart")
	return nil
}

func (s *cartService) UpdateItemQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	const op = "service.CartService.UpdateItemQuantity"
	logger := s.log.With(
		slog.String("op", op),
		slog.Int64("userID", userID),
		slog.Int64("productID", productID),
		slog.Int("quantity", quantity),
	)

	if quantity < 1 {
		return fmt.Errorf("%s: quantity must be at least 1: %w", op, ErrInvalidInput)
	}

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		return s.cartLookupError(logger, op, err)
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, cart.ID, productID, quantity); err != nil {
		if errors.Is(err, storage.ErrCartItemNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		logger.Error("failed to update cart item", slog.Any("error", err))
		return fmt.Errorf("%s: failed to update cart item: %w", op, err)
	}
	return nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID int64) error {
	const op = "service.CartService.RemoveItem"
	logger := s.log.With(
		slog.String("op", op),
		slog.Int64("userID", userID),
		slog.Int64("productID", productID),
	)

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		return s.cartLookupError(logger, op, err)
	}

	if err := s.cartRepo.RemoveItem(ctx, cart.ID, productID); err != nil {
		if errors.Is(err, storage.ErrCartItemNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		logger.Error("failed to remove cart item", slog.Any("error", err))
		return fmt.Errorf("%s: failed to remove cart item: %w", op, err)
	}
	return nil
}

// нет корзины, значит нет и позиции
func (s *cartService) cartLookupError(logger *slog.Logger, op string, err error) error {
	if errors.Is(err, storage.ErrCartNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	logger.Error("failed to get cart", slog.Any("error", err))
	return fmt.Errorf("%s: failed to get cart: %w", op, err)
}

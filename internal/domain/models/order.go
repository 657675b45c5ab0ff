package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus — статус заказа
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// таблица допустимых переходов; DELIVERED и CANCELLED терминальные
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// Valid проверяет, что статус входит в перечисление
func (s OrderStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Terminal сообщает, что из статуса нет переходов
func (s OrderStatus) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

// CanTransitionTo проверяет переход по таблице
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order — оформленный заказ. После создания меняется только статус.
type Order struct {
	ID          int64           `json:"id"`
	Reference   uuid.UUID       `json:"reference"`
	UserID      int64           `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      OrderStatus     `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Items       []*OrderItem    `json:"items"`
	User        *OrderOwner     `json:"user,omitempty"` // заполняется только в админском списке
}

// OrderOwner — публичные данные владельца заказа
type OrderOwner struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// OrderItem — позиция заказа со снимком цены и товара на момент оформления
type OrderItem struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"order_id"`
	ProductID    int64           `json:"product_id"`
	Quantity     int             `json:"quantity"`
	PriceAtOrder decimal.Decimal `json:"price_at_order"`
	Product      ProductSnapshot `json:"product"`
}

// Subtotal считается только от зафиксированной цены
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.PriceAtOrder.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ProductSnapshot хранится в order_items.product_snapshot (JSONB)
type ProductSnapshot struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	Images        []string         `json:"images"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price,omitempty"`
}

package models

import "time"

// Cart — корзина пользователя, одна на пользователя
type Cart struct {
	ID        int64
	UserID    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartItem — позиция корзины. Для пары (корзина, товар) существует не более одной позиции.
type CartItem struct {
	ID        int64
	CartID    int64
	ProductID int64
	Quantity  int
	Product   *Product // заполняется через JOIN с таблицей products, если запрос это делает
}

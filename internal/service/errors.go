package service

import "errors"

// Виды ошибок, которые транспортный слой переводит в HTTP-статусы.
// Сервисы оборачивают их через %w, обработчики сверяют через errors.Is.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrAccessDenied       = errors.New("access denied")
	ErrNotFound           = errors.New("not found")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrTransactionFailure = errors.New("transaction failure")
)

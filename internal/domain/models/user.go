package models

import "time"

// Роли пользователей
const (
	RoleUser     = "user"
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

// User представляет пользователя магазина
type User struct {
	ID        int64
	Email     string
	Name      string
	PassHash  []byte
	Role      string
	CreatedAt time.Time
}

// IsPrivilegedRole сообщает, даёт ли роль доступ к чужим заказам и смене статусов
func IsPrivilegedRole(role string) bool {
	return role == RoleAdmin || role == RoleOperator
}

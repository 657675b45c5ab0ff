package jwtmiddleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/linemk/shop-orders/internal/domain/models"
)

type contextKey string

const ActorKey contextKey = "actor"

// Actor — данные аутентифицированного пользователя, доступные обработчикам
type Actor struct {
	UserID int64
	Role   string
}

// NewJWTMiddleware создаёт middleware для проверки JWT.
// Токен берётся из cookie cookieName, а если её нет, из заголовка Authorization.
func NewJWTMiddleware(secret, cookieName string) func(http.Handler) http.Handler {
	if secret == "" {
		panic("JWT secret is not set")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, errMsg := extractToken(r, cookieName)
			if errMsg != "" {
				unauthorized(w, errMsg)
				return
			}

			// Парсинг и проверка токена
			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
				// Проверка алгоритма
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				unauthorized(w, "invalid token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				unauthorized(w, "invalid token claims")
				return
			}

			// Извлекаем идентификатор пользователя из поля "sub"
			sub, ok := claims["sub"].(string)
			if !ok {
				unauthorized(w, "invalid token claims: sub not found")
				return
			}

			userID, err := strconv.ParseInt(sub, 10, 64)
			if err != nil {
				unauthorized(w, "invalid token claims: invalid user id")
				return
			}

			// токены без роли считаем обычными пользователями
			role, _ := claims["role"].(string)
			if role == "" {
				role = models.RoleUser
			}

			ctx := WithActor(r.Context(), Actor{UserID: userID, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// unauthorized отвечает 401 в том же конверте, что и обработчики
func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg})
}

func extractToken(r *http.Request, cookieName string) (string, string) {
	if cookieName != "" {
		if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
			return c.Value, ""
		}
	}

	// формат: "Bearer <token>"
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", "missing token"
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "invalid token format"
	}
	return parts[1], ""
}

// WithActor кладёт Actor в контекст
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// FromContext извлекает Actor из контекста.
func FromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(Actor)
	return actor, ok
}

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/linemk/shop-orders/internal/domain/models"
	"github.com/linemk/shop-orders/internal/service"
)

// RegisterRequest — тело запроса регистрации с тегами валидации
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest — тело запроса входа
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse представляет структуру ответа с JWT-токеном
type AuthResponse struct {
	Token string `json:"token"`
}

// UserResponse — публичные данные пользователя
type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, CreatedAt: u.CreatedAt}
}

// RegisterHandler обрабатывает POST /api/auth/register
func RegisterHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RegisterHandler"
		logger := log.With(slog.String("op", op))

		var req RegisterRequest
		if !decodeAndValidate(logger, w, r, &req) {
			return
		}

		user, err := authService.Register(r.Context(), req.Email, req.Name, req.Password)
		if err != nil {
			respondError(logger, w, err)
			return
		}

		writeJSON(logger, w, http.StatusCreated, newUserResponse(user))
	}
}

// LoginHandler обрабатывает POST /api/auth/login.
// Токен возвращается в теле и дублируется в HttpOnly cookie.
func LoginHandler(log *slog.Logger, authService service.AuthServiceInterface, cookieName string, ttl time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LoginHandler"
		logger := log.With(slog.String("op", op))

		var req LoginRequest
		if !decodeAndValidate(logger, w, r, &req) {
			return
		}

		token, err := authService.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			respondError(logger, w, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(ttl.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(logger, w, http.StatusOK, AuthResponse{Token: token})
	}
}

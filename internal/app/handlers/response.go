package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/linemk/shop-orders/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/shop-orders/internal/service"
)

var validate = validator.New()

// Response — общий конверт всех ответов API
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(logger *slog.Logger, w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Response{Success: true, Data: data}); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func writeError(logger *slog.Logger, w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Response{Success: false, Message: msg}); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// errorStatus переводит вид ошибки сервиса в HTTP-статус и сообщение для клиента.
// Для 500 исходный текст ошибки наружу не отдаётся.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, service.ErrUnauthenticated.Error()
	case errors.Is(err, service.ErrAccessDenied):
		return http.StatusForbidden, service.ErrAccessDenied.Error()
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, service.ErrNotFound.Error()
	case errors.Is(err, service.ErrEmptyCart):
		return http.StatusBadRequest, service.ErrEmptyCart.Error()
	case errors.Is(err, service.ErrProductUnavailable):
		return http.StatusBadRequest, service.ErrProductUnavailable.Error()
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, service.ErrInvalidInput.Error()
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict, service.ErrInvalidTransition.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func respondError(logger *slog.Logger, w http.ResponseWriter, err error) {
	status, msg := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", slog.Any("error", err))
	} else {
		logger.Warn("request rejected", slog.Int("status", status), slog.Any("error", err))
	}
	writeError(logger, w, status, msg)
}

// decodeAndValidate читает JSON-тело и проверяет теги validate
func decodeAndValidate(logger *slog.Logger, w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Warn("invalid request: decoding error", slog.Any("error", err))
		writeError(logger, w, http.StatusBadRequest, "invalid request")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		logger.Warn("invalid request: validation error", slog.Any("error", err))
		writeError(logger, w, http.StatusBadRequest, "validation error")
		return false
	}
	return true
}

// actorFrom достаёт пользователя, положенного JWT middleware
func actorFrom(logger *slog.Logger, w http.ResponseWriter, r *http.Request) (jwtmiddleware.Actor, bool) {
	actor, ok := jwtmiddleware.FromContext(r.Context())
	if !ok {
		logger.Error("actor not found in context")
		writeError(logger, w, http.StatusUnauthorized, service.ErrUnauthenticated.Error())
	}
	return actor, ok
}

func pathID(logger *slog.Logger, w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		logger.Warn("invalid path parameter", slog.String("param", name), slog.String("value", chi.URLParam(r, name)))
		writeError(logger, w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/linemk/shop-orders/internal/domain/models"
	security "github.com/linemk/shop-orders/internal/jwt-new"
	"github.com/linemk/shop-orders/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	log       *slog.Logger
	userRepo  storage.UserStorage
	tokenTTL  time.Duration
	jwtSecret string
}

func NewAuthService(log *slog.Logger, userRepo storage.UserStorage, tokenTTL time.Duration, jwtSecret string) *AuthService {
	return &AuthService{
		log:       log,
		userRepo:  userRepo,
		tokenTTL:  tokenTTL,
		jwtSecret: jwtSecret,
	}
}

type AuthServiceInterface interface {
	Register(ctx context.Context, email, name, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

// Register создаёт покупателя с ролью user.
// Пароль хэшируется через bcrypt, который автоматически добавляет соль.
func (a *AuthService) Register(ctx context.Context, email, name, password string) (*models.User, error) {
	const op = "service.AuthService.Register"
	email = strings.ToLower(strings.TrimSpace(email))
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)
	logger.Info("registering user")

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user, err := a.userRepo.CreateUser(ctx, &models.User{
		Email:    email,
		Name:     strings.TrimSpace(name),
		PassHash: passHash,
		Role:     models.RoleUser,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			logger.Warn("user already exists")
			return nil, fmt.Errorf("%s: user already exists: %w", op, ErrInvalidInput)
		}
		logger.Error("failed to create user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create user: %w", op, err)
	}

	logger.Info("user registered", slog.Int64("userID", user.ID))
	return user, nil
}

// Login осуществляет аутентификацию пользователя.
// Введённый пароль сравнивается с сохранённым хэшем, после чего выдаётся JWT-токен с ролью.
func (a *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	const op = "service.AuthService.Login"
	email = strings.ToLower(strings.TrimSpace(email))
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)
	logger.Info("checking user")

	user, err := a.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found")
			return "", fmt.Errorf("%s: invalid credentials: %w", op, ErrUnauthenticated)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		logger.Warn("invalid password")
		return "", fmt.Errorf("%s: invalid credentials: %w", op, ErrUnauthenticated)
	}

	token, err := security.NewToken(user, a.tokenTTL, a.jwtSecret)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user logged in successfully", slog.Int64("userID", user.ID))
	return token, nil
}

// SetRole выдаёт пользователю роль. Через HTTP не доступно, только утилитой cmd/promote.
func (a *AuthService) SetRole(ctx context.Context, email, role string) error {
	const op = "service.AuthService.SetRole"
	email = strings.ToLower(strings.TrimSpace(email))
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
		slog.String("role", role),
	)

	switch role {
	case models.RoleUser, models.RoleOperator, models.RoleAdmin:
	default:
		return fmt.Errorf("%s: unknown role %q: %w", op, role, ErrInvalidInput)
	}

	if err := a.userRepo.SetRole(ctx, email, role); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		logger.Error("failed to set role", slog.Any("error", err))
		return fmt.Errorf("%s: failed to set role: %w", op, err)
	}

	logger.Info("role updated")
	return nil
}

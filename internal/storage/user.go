package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/linemk/shop-orders/internal/domain/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

type UserStorage interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	SetRole(ctx context.Context, email, role string) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: db}
}

const selectUser = "SELECT id, email, name, pass_hash, role, created_at FROM users"

// получение уже существующего пользователя
func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+" WHERE email = $1", email))
}

func (r *userRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+" WHERE id = $1", id))
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO users (email, name, pass_hash, role) VALUES ($1, $2, $3, $4) RETURNING id, created_at",
		user.Email, user.Name, user.PassHash, user.Role,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isPQCode(err, uniqueViolation) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

// SetRole меняет роль пользователя; используется утилитой cmd/promote
func (r *userRepository) SetRole(ctx context.Context, email, role string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET role = $1 WHERE email = $2", role, email)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PassHash, &user.Role, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/questhunt/quest-backend/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type userRepo struct {
	db DB
}

func NewUserRepository(db DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	q := `
        INSERT INTO users (id, phone, display_name, created_at, updated_at)
        VALUES ($1, $2, $3, NOW(), NOW())
    `
	_, err := r.db.Exec(ctx, q, u.ID, u.Phone, u.DisplayName)
	return err
}

func (r *userRepo) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	q := `
        SELECT id, phone, display_name, created_at, updated_at
        FROM users
        WHERE phone = $1
    `
	return r.scanOne(r.db.QueryRow(ctx, q, phone))
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	q := `
        SELECT id, phone, display_name, created_at, updated_at
        FROM users
        WHERE id = $1
    `
	return r.scanOne(r.db.QueryRow(ctx, q, id))
}

func (r *userRepo) scanOne(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Phone, &u.DisplayName, &u.CreatedAt, &u.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/questhunt/quest-backend/internal/models"
)

type SessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	CleanupExpired(ctx context.Context) error
}

type sessionRepo struct {
	db DB
}

func NewSessionRepository(db DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, s *models.Session) error {
	q := `
        INSERT INTO sessions (id, user_id, token_hash, expires_at, revoked, created_at)
        VALUES ($1, $2, $3, $4, FALSE, NOW())
    `
	_, err := r.db.Exec(ctx, q, s.ID, s.UserID, s.TokenHash, s.ExpiresAt)
	return err
}

func (r *sessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	q := `
        SELECT id, user_id, token_hash, expires_at, revoked, created_at
        FROM sessions
        WHERE id = $1
    `
	row := r.db.QueryRow(ctx, q, id)
	var s models.Session
	err := row.Scan(&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &s.Revoked, &s.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) Revoke(ctx context.Context, id uuid.UUID) error {
	q := `UPDATE sessions SET revoked = TRUE WHERE id = $1`
	_, err := r.db.Exec(ctx, q, id)
	return err
}

func (r *sessionRepo) CleanupExpired(ctx context.Context) error {
	q := `DELETE FROM sessions WHERE expires_at < NOW() OR revoked = TRUE`
	_, err := r.db.Exec(ctx, q)
	return err
}

package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/questhunt/quest-backend/internal/models"
)

type QrTokenRepository interface {
	Create(ctx context.Context, t *models.QrAccessToken) error
	// GetByToken returns nil when the raw token is unknown; malformed
	// tokens simply never match.
	GetByToken(ctx context.Context, token string) (*models.QrAccessToken, error)
	// ConsumeOnce performs the serialized consume step: a single
	// conditional UPDATE that increments the access count and flips the
	// used flag when the cap is reached. Exactly one of N racing calls
	// on a single-use token sees true.
	ConsumeOnce(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (bool, error)
	// Deactivate retires a token without deleting it, keeping the row
	// for audit.
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type qrTokenRepo struct {
	db DB
}

func NewQrTokenRepository(db DB) QrTokenRepository {
	return &qrTokenRepo{db: db}
}

func (r *qrTokenRepo) Create(ctx context.Context, t *models.QrAccessToken) error {
	q := `
        INSERT INTO qr_access_tokens
            (id, token, game_number, active, used, access_count, max_access_count, metadata, created_at)
        VALUES ($1, $2, $3, $4, FALSE, 0, $5, $6, NOW())
    `
	_, err := r.db.Exec(ctx, q, t.ID, t.Token, t.GameNumber, t.Active, t.MaxAccessCount, t.Metadata)
	return err
}

func (r *qrTokenRepo) GetByToken(ctx context.Context, token string) (*models.QrAccessToken, error) {
	q := `
        SELECT id, token, game_number, active, used, used_at, used_by,
               access_count, max_access_count, first_accessed_at, last_accessed_at,
               metadata, created_at
        FROM qr_access_tokens
        WHERE token = $1
    `
	row := r.db.QueryRow(ctx, q, token)
	var t models.QrAccessToken
	err := row.Scan(
		&t.ID,
		&t.Token,
		&t.GameNumber,
		&t.Active,
		&t.Used,
		&t.UsedAt,
		&t.UsedBy,
		&t.AccessCount,
		&t.MaxAccessCount,
		&t.FirstAccessedAt,
		&t.LastAccessedAt,
		&t.Metadata,
		&t.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *qrTokenRepo) ConsumeOnce(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (bool, error) {
	q := `
        UPDATE qr_access_tokens
        SET access_count      = access_count + 1,
            used              = access_count + 1 >= max_access_count,
            used_at           = COALESCE(used_at, NOW()),
            used_by           = COALESCE(used_by, $2),
            first_accessed_at = COALESCE(first_accessed_at, NOW()),
            last_accessed_at  = NOW()
        WHERE id = $1 AND active = TRUE AND access_count < max_access_count
    `
	tag, err := r.db.Exec(ctx, q, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *qrTokenRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	q := `UPDATE qr_access_tokens SET active = FALSE WHERE id = $1`
	_, err := r.db.Exec(ctx, q, id)
	return err
}

package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/questhunt/quest-backend/internal/models"
)

type OtpChallengeRepository interface {
	Create(ctx context.Context, c *models.OtpChallenge) error
	// GetLatestMatching returns the most recent unused, unexpired challenge
	// for (phone, code), or nil when none qualifies.
	GetLatestMatching(ctx context.Context, phone, code string) (*models.OtpChallenge, error)
	// Consume marks the challenge used, conditional on it still being
	// unused. Returns false when another verify got there first.
	Consume(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// WasRecentlyConsumed reports whether a challenge for phone was
	// consumed within the grace window (gates new-user registration).
	WasRecentlyConsumed(ctx context.Context, phone string, window time.Duration) (bool, error)
	CleanupExpired(ctx context.Context) error
}

type otpChallengeRepo struct {
	db DB
}

func NewOtpChallengeRepository(db DB) OtpChallengeRepository {
	return &otpChallengeRepo{db: db}
}

func (r *otpChallengeRepo) Create(ctx context.Context, c *models.OtpChallenge) error {
	q := `
        INSERT INTO otp_challenges (id, phone, code, session_id, used, expires_at, created_at)
        VALUES ($1, $2, $3, $4, FALSE, $5, NOW())
    `
	_, err := r.db.Exec(ctx, q, c.ID, c.Phone, c.Code, c.SessionID, c.ExpiresAt)
	return err
}

func (r *otpChallengeRepo) GetLatestMatching(ctx context.Context, phone, code string) (*models.OtpChallenge, error) {
	q := `
        SELECT id, phone, code, session_id, used, used_at, expires_at, created_at
        FROM otp_challenges
        WHERE phone = $1 AND code = $2 AND used = FALSE AND expires_at > NOW()
        ORDER BY created_at DESC
        LIMIT 1
    `
	row := r.db.QueryRow(ctx, q, phone, code)
	var c models.OtpChallenge
	err := row.Scan(
		&c.ID,
		&c.Phone,
		&c.Code,
		&c.SessionID,
		&c.Used,
		&c.UsedAt,
		&c.ExpiresAt,
		&c.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *otpChallengeRepo) Consume(ctx context.Context, id uuid.UUID) (bool, error) {
	q := `
        UPDATE otp_challenges
        SET used = TRUE, used_at = NOW()
        WHERE id = $1 AND used = FALSE AND expires_at > NOW()
    `
	tag, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *otpChallengeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	q := `DELETE FROM otp_challenges WHERE id = $1`
	_, err := r.db.Exec(ctx, q, id)
	return err
}

func (r *otpChallengeRepo) WasRecentlyConsumed(ctx context.Context, phone string, window time.Duration) (bool, error) {
	q := `
        SELECT id
        FROM otp_challenges
        WHERE phone = $1 AND used = TRUE AND used_at + $2::interval > NOW()
        ORDER BY used_at DESC
        LIMIT 1
    `
	row := r.db.QueryRow(ctx, q, phone, window)
	var id uuid.UUID
	err := row.Scan(&id)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *otpChallengeRepo) CleanupExpired(ctx context.Context) error {
	q := `
        DELETE FROM otp_challenges
        WHERE
          (used = FALSE AND expires_at < NOW())
          OR
          (used = TRUE AND used_at + INTERVAL '1 hour' < NOW())
    `
	_, err := r.db.Exec(ctx, q)
	return err
}

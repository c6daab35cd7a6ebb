package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/questhunt/quest-backend/internal/models"
)

// QrAccessLogRepository is append-only: rows are never updated or deleted.
type QrAccessLogRepository interface {
	Create(ctx context.Context, entry *models.QrAccessLog) error
	CountByTokenID(ctx context.Context, tokenID uuid.UUID) (int, error)
}

type qrAccessLogRepo struct {
	db DB
}

func NewQrAccessLogRepository(db DB) QrAccessLogRepository {
	return &qrAccessLogRepo{db: db}
}

func (r *qrAccessLogRepo) Create(ctx context.Context, entry *models.QrAccessLog) error {
	q := `
        INSERT INTO qr_access_logs (
            id, token_id, raw_token, game_number, user_id, session_token,
            status, deny_reason, ip, user_agent, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
    `
	_, err := r.db.Exec(ctx, q,
		entry.ID,
		entry.TokenID,
		entry.RawToken,
		entry.GameNumber,
		entry.UserID,
		entry.SessionToken,
		entry.Status,
		entry.DenyReason,
		entry.IP,
		entry.UserAgent,
	)
	return err
}

func (r *qrAccessLogRepo) CountByTokenID(ctx context.Context, tokenID uuid.UUID) (int, error) {
	q := `SELECT COUNT(*) FROM qr_access_logs WHERE token_id = $1`
	var n int
	if err := r.db.QueryRow(ctx, q, tokenID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

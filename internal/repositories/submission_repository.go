package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/questhunt/quest-backend/internal/models"
)

type SubmissionRepository interface {
	Create(ctx context.Context, s *models.AnswerSubmission) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AnswerSubmission, error)
	HasPending(ctx context.Context, userID uuid.UUID, gameNumber int) (bool, error)
	// ReviewIfPending transitions PENDING → APPROVED/REJECTED. Conditional
	// on current status so exactly one reviewer wins.
	ReviewIfPending(ctx context.Context, id uuid.UUID, reviewer string, status models.SubmissionStatus) (bool, error)
}

type submissionRepo struct {
	db DB
}

func NewSubmissionRepository(db DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Create(ctx context.Context, s *models.AnswerSubmission) error {
	q := `
        INSERT INTO answer_submissions (id, user_id, game_number, answer, status, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
    `
	_, err := r.db.Exec(ctx, q, s.ID, s.UserID, s.GameNumber, s.Answer, s.Status)
	return err
}

func (r *submissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.AnswerSubmission, error) {
	q := `
        SELECT id, user_id, game_number, answer, status, reviewed_by, reviewed_at, created_at
        FROM answer_submissions
        WHERE id = $1
    `
	row := r.db.QueryRow(ctx, q, id)
	var s models.AnswerSubmission
	err := row.Scan(&s.ID, &s.UserID, &s.GameNumber, &s.Answer, &s.Status, &s.ReviewedBy, &s.ReviewedAt, &s.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *submissionRepo) HasPending(ctx context.Context, userID uuid.UUID, gameNumber int) (bool, error) {
	q := `
        SELECT id FROM answer_submissions
        WHERE user_id = $1 AND game_number = $2 AND status = 'PENDING'
        LIMIT 1
    `
	var id uuid.UUID
	err := r.db.QueryRow(ctx, q, userID, gameNumber).Scan(&id)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *submissionRepo) ReviewIfPending(ctx context.Context, id uuid.UUID, reviewer string, status models.SubmissionStatus) (bool, error) {
	q := `
        UPDATE answer_submissions
        SET status = $2, reviewed_by = $3, reviewed_at = NOW()
        WHERE id = $1 AND status = 'PENDING'
    `
	tag, err := r.db.Exec(ctx, q, id, status, reviewer)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/questhunt/quest-backend/internal/models"
	"github.com/questhunt/quest-backend/internal/repositories"
	"github.com/questhunt/quest-backend/internal/utils"
)

// SubmissionService accepts CAPTCHA-gated answer submissions and lets an
// admin review them. Submissions stay PENDING until reviewed.
type SubmissionService interface {
	Submit(ctx context.Context, userID uuid.UUID, gameNumber int, answer, captchaID, captchaAnswer string) (*models.AnswerSubmission, error)
	Review(ctx context.Context, submissionID uuid.UUID, reviewer string, approve bool) (*models.AnswerSubmission, error)
}

type submissionService struct {
	submissionRepo repositories.SubmissionRepository
	captcha        CaptchaService
}

func NewSubmissionService(submissionRepo repositories.SubmissionRepository, captcha CaptchaService) SubmissionService {
	return &submissionService{submissionRepo: submissionRepo, captcha: captcha}
}

func (s *submissionService) Submit(ctx context.Context, userID uuid.UUID, gameNumber int, answer, captchaID, captchaAnswer string) (*models.AnswerSubmission, error) {
	if !s.captcha.Verify(captchaID, captchaAnswer) {
		return nil, utils.ErrCaptchaMismatch
	}

	pending, err := s.submissionRepo.HasPending(ctx, userID, gameNumber)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, utils.ErrDuplicateSubmission
	}

	submission := &models.AnswerSubmission{
		ID:         uuid.New(),
		UserID:     userID,
		GameNumber: gameNumber,
		Answer:     answer,
		Status:     models.SubmissionPending,
	}
	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}

func (s *submissionService) Review(ctx context.Context, submissionID uuid.UUID, reviewer string, approve bool) (*models.AnswerSubmission, error) {
	status := models.SubmissionRejected
	if approve {
		status = models.SubmissionApproved
	}

	won, err := s.submissionRepo.ReviewIfPending(ctx, submissionID, reviewer, status)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, utils.ErrSubmissionReviewed
	}
	return s.submissionRepo.GetByID(ctx, submissionID)
}

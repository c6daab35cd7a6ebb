package services

import (
	"context"

	"github.com/questhunt/quest-backend/internal/repositories"
	"github.com/questhunt/quest-backend/internal/utils"
)

// CleanupService handles purging expired OTP challenges, dead sessions and
// stale rate-limit counters. QR tokens and access logs are never deleted:
// they are the audit trail.
type CleanupService interface {
	CleanupDaily(ctx context.Context) error
}

type cleanupService struct {
	otpRepo       repositories.OtpChallengeRepository
	sessionRepo   repositories.SessionRepository
	rateLimitRepo repositories.RateLimitRepository
}

func NewCleanupService(
	otpRepo repositories.OtpChallengeRepository,
	sessionRepo repositories.SessionRepository,
	rateLimitRepo repositories.RateLimitRepository,
) CleanupService {
	return &cleanupService{
		otpRepo:       otpRepo,
		sessionRepo:   sessionRepo,
		rateLimitRepo: rateLimitRepo,
	}
}

func (s *cleanupService) CleanupDaily(ctx context.Context) error {
	logger := utils.Logger

	if err := s.otpRepo.CleanupExpired(ctx); err != nil {
		logger.WithError(err).Error("Failed to cleanup otp_challenges")
		return err
	}
	if err := s.sessionRepo.CleanupExpired(ctx); err != nil {
		logger.WithError(err).Error("Failed to cleanup sessions")
		return err
	}
	if err := s.rateLimitRepo.CleanupExpired(ctx); err != nil {
		logger.WithError(err).Error("Failed to cleanup rate_limit_attempts")
		return err
	}

	logger.Info("Daily cleanup completed successfully.")
	return nil
}

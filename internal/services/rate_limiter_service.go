package services

import (
	"context"
	"fmt"

	"github.com/questhunt/quest-backend/internal/config"
	"github.com/questhunt/quest-backend/internal/repositories"
	"github.com/questhunt/quest-backend/internal/utils"
)

// RateLimiterService provides a high-level interface for checking rate limits.
type RateLimiterService interface {
	CheckSMSRateLimits(ctx context.Context, ip, phoneNumber string) error
}

type rateLimiterService struct {
	repo repositories.RateLimitRepository
	cfg  *config.Config
}

func NewRateLimiterService(repo repositories.RateLimitRepository, cfg *config.Config) RateLimiterService {
	return &rateLimiterService{repo: repo, cfg: cfg}
}

// CheckSMSRateLimits checks global, per-IP, and per-phone-number limits for SMS requests.
func (s *rateLimiterService) CheckSMSRateLimits(ctx context.Context, ip, phoneNumber string) error {
	// 1. Global limit
	globalKey := "sms:global"
	allowed, err := s.repo.IncrementAndCheck(ctx, globalKey, s.cfg.GlobalSMSLimitPerHour, s.cfg.RateLimitWindow)
	if err != nil {
		return err
	}
	if !allowed {
		utils.Logger.Warnf("Global SMS rate limit exceeded (key: %s)", globalKey)
		return utils.ErrRateLimitExceeded
	}

	// 2. Per-IP limit
	ipKey := fmt.Sprintf("sms:ip:%s", ip)
	allowed, err = s.repo.IncrementAndCheck(ctx, ipKey, s.cfg.SMSLimitPerIPPerHour, s.cfg.RateLimitWindow)
	if err != nil {
		return err
	}
	if !allowed {
		utils.Logger.Warnf("Per-IP SMS rate limit exceeded (key: %s)", ipKey)
		return utils.ErrRateLimitExceeded
	}

	// 3. Per-destination limit
	phoneKey := fmt.Sprintf("sms:phone:%s", phoneNumber)
	allowed, err = s.repo.IncrementAndCheck(ctx, phoneKey, s.cfg.SMSLimitPerPhonePerHour, s.cfg.RateLimitWindow)
	if err != nil {
		return err
	}
	if !allowed {
		utils.Logger.Warnf("Per-phone SMS rate limit exceeded (key: %s)", phoneKey)
		return utils.ErrRateLimitExceeded
	}

	return nil
}

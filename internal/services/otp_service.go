package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/questhunt/quest-backend/internal/config"
	"github.com/questhunt/quest-backend/internal/models"
	"github.com/questhunt/quest-backend/internal/repositories"
	"github.com/questhunt/quest-backend/internal/utils"
)

// VerifyResult is the outcome of a successful OTP verification. When the
// phone has no account yet, IsNewUser is set and the caller is expected to
// complete registration within the configured window.
type VerifyResult struct {
	Matched     bool
	IsNewUser   bool
	User        *models.User
	AccessToken string
}

type OTPService interface {
	// Send issues a fresh challenge for phone and dispatches the code via
	// SMS. Returns the challenge's session id.
	Send(ctx context.Context, phone, clientIP string) (uuid.UUID, error)
	// Verify consumes the most recent live challenge matching (phone, code).
	Verify(ctx context.Context, phone, code string) (*VerifyResult, error)
	// Register completes new-user signup for a recently verified phone.
	Register(ctx context.Context, phone, displayName string) (*models.User, string, error)
}

type otpService struct {
	otpRepo     repositories.OtpChallengeRepository
	userRepo    repositories.UserRepository
	sessions    SessionService
	rateLimiter RateLimiterService
	sender      SMSSender
	cfg         *config.Config
}

func NewOTPService(
	otpRepo repositories.OtpChallengeRepository,
	userRepo repositories.UserRepository,
	sessions SessionService,
	rateLimiter RateLimiterService,
	sender SMSSender,
	cfg *config.Config,
) OTPService {
	return &otpService{
		otpRepo:     otpRepo,
		userRepo:    userRepo,
		sessions:    sessions,
		rateLimiter: rateLimiter,
		sender:      sender,
		cfg:         cfg,
	}
}

func (s *otpService) Send(ctx context.Context, phone, clientIP string) (uuid.UUID, error) {
	if !utils.IsMobilePhone(phone) {
		return uuid.Nil, utils.ErrInvalidPhoneFormat
	}

	if err := s.rateLimiter.CheckSMSRateLimits(ctx, clientIP, phone); err != nil {
		return uuid.Nil, err
	}

	code, err := utils.RandomNumericString(s.cfg.OtpCodeLength)
	if err != nil {
		return uuid.Nil, err
	}

	challenge := &models.OtpChallenge{
		ID:        uuid.New(),
		Phone:     phone,
		Code:      code,
		SessionID: uuid.New(),
		ExpiresAt: time.Now().Add(s.cfg.OtpExpiry),
	}
	if err := s.otpRepo.Create(ctx, challenge); err != nil {
		return uuid.Nil, err
	}

	body := fmt.Sprintf("Your %s login code is %s", s.cfg.AppName, code)
	if sendErr := s.sender.Send(ctx, phone, body); sendErr != nil {
		// No orphaned valid codes for unsent messages.
		if delErr := s.otpRepo.Delete(ctx, challenge.ID); delErr != nil {
			utils.Logger.WithError(delErr).Errorf("Failed to roll back challenge %s after send failure", challenge.ID)
		}
		return uuid.Nil, fmt.Errorf("%w: %v", utils.ErrDeliveryFailed, sendErr)
	}

	return challenge.SessionID, nil
}

func (s *otpService) Verify(ctx context.Context, phone, code string) (*VerifyResult, error) {
	challenge, err := s.otpRepo.GetLatestMatching(ctx, phone, code)
	if err != nil {
		return nil, err
	}
	if challenge == nil {
		return nil, utils.ErrInvalidOrExpiredCode
	}

	// Conditional mark-used: a concurrent verify on the same challenge
	// must not also succeed.
	consumed, err := s.otpRepo.Consume(ctx, challenge.ID)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, utils.ErrInvalidOrExpiredCode
	}

	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return &VerifyResult{Matched: true, IsNewUser: true}, nil
	}

	token, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{Matched: true, User: user, AccessToken: token}, nil
}

func (s *otpService) Register(ctx context.Context, phone, displayName string) (*models.User, string, error) {
	if !utils.IsMobilePhone(phone) {
		return nil, "", utils.ErrInvalidPhoneFormat
	}

	verified, err := s.otpRepo.WasRecentlyConsumed(ctx, phone, s.cfg.RegistrationWindow)
	if err != nil {
		return nil, "", err
	}
	if !verified {
		return nil, "", utils.ErrPhoneNotVerified
	}

	existing, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", utils.ErrUserExists
	}

	user := &models.User{
		ID:          uuid.New(),
		Phone:       phone,
		DisplayName: displayName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

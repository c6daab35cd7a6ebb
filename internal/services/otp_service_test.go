package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/questhunt/quest-backend/internal/utils"
)

const (
	testPhone = "09123456789"
	testIP    = "127.0.0.1"
)

type otpTestEnv struct {
	otpRepo  *fakeOtpRepo
	userRepo *fakeUserRepo
	sender   *recordingSender
	sessions SessionService
	svc      OTPService
}

func newOtpTestEnv(t *testing.T) *otpTestEnv {
	t.Helper()
	cfg := newTestConfig()
	env := &otpTestEnv{
		otpRepo:  newFakeOtpRepo(),
		userRepo: newFakeUserRepo(),
		sender:   &recordingSender{},
	}
	env.sessions = NewSessionService(newFakeSessionRepo(), cfg)
	env.svc = NewOTPService(
		env.otpRepo,
		env.userRepo,
		env.sessions,
		NewRateLimiterService(newFakeRateLimitRepo(), cfg),
		env.sender,
		cfg,
	)
	return env
}

// sentCode extracts the 6-digit code from the last SMS body.
func (env *otpTestEnv) sentCode(t *testing.T) string {
	t.Helper()
	env.sender.mu.Lock()
	defer env.sender.mu.Unlock()
	require.NotEmpty(t, env.sender.messages, "expected at least one SMS")
	body := env.sender.messages[len(env.sender.messages)-1]
	parts := strings.Fields(body)
	code := parts[len(parts)-1]
	require.Len(t, code, 6)
	return code
}

func TestSendOtpRejectsInvalidPhone(t *testing.T) {
	env := newOtpTestEnv(t)

	for _, phone := range []string{"", "0912345678", "091234567890", "08123456789", "091234S6789", "+989123456789"} {
		_, err := env.svc.Send(context.Background(), phone, testIP)
		require.ErrorIs(t, err, utils.ErrInvalidPhoneFormat, "phone %q should be rejected", phone)
	}
	require.Empty(t, env.sender.messages)
}

func TestSendOtpDeliversCode(t *testing.T) {
	env := newOtpTestEnv(t)

	sessionID, err := env.svc.Send(context.Background(), testPhone, testIP)
	require.NoError(t, err)
	require.NotEqual(t, "00000000-0000-0000-0000-000000000000", sessionID.String())

	code := env.sentCode(t)
	require.Equal(t, testPhone, env.sender.to[0])

	// The sent code must verify.
	result, err := env.svc.Verify(context.Background(), testPhone, code)
	require.NoError(t, err)
	require.True(t, result.Matched)
}

func TestSendOtpRollsBackOnDeliveryFailure(t *testing.T) {
	cfg := newTestConfig()
	otpRepo := newFakeOtpRepo()
	svc := NewOTPService(
		otpRepo,
		newFakeUserRepo(),
		NewSessionService(newFakeSessionRepo(), cfg),
		NewRateLimiterService(newFakeRateLimitRepo(), cfg),
		failingSender{},
		cfg,
	)

	_, err := svc.Send(context.Background(), testPhone, testIP)
	require.ErrorIs(t, err, utils.ErrDeliveryFailed)

	// The failed challenge must not be verifiable with any code.
	otpRepo.mu.Lock()
	require.Empty(t, otpRepo.challenges, "challenge should be rolled back after send failure")
	otpRepo.mu.Unlock()
}

func TestSendOtpEnforcesPerPhoneRateLimit(t *testing.T) {
	env := newOtpTestEnv(t)
	cfg := newTestConfig()

	for i := 0; i < cfg.SMSLimitPerPhonePerHour; i++ {
		_, err := env.svc.Send(context.Background(), testPhone, testIP)
		require.NoError(t, err)
	}
	_, err := env.svc.Send(context.Background(), testPhone, testIP)
	require.ErrorIs(t, err, utils.ErrRateLimitExceeded)
}

func TestVerifyOtpRejectsWrongCode(t *testing.T) {
	env := newOtpTestEnv(t)

	_, err := env.svc.Send(context.Background(), testPhone, testIP)
	require.NoError(t, err)

	_, err = env.svc.Verify(context.Background(), testPhone, "000000")
	if code := env.sentCode(t); code == "000000" {
		t.Skip("generated code collided with the wrong-code probe")
	}
	require.ErrorIs(t, err, utils.ErrInvalidOrExpiredCode)
}

func TestVerifyOtpIsSingleUse(t *testing.T) {
	env := newOtpTestEnv(t)

	_, err := env.svc.Send(context.Background(), testPhone, testIP)
	require.NoError(t, err)
	code := env.sentCode(t)

	_, err = env.svc.Verify(context.Background(), testPhone, code)
	require.NoError(t, err)

	// Replay of a consumed code must fail.
	_, err = env.svc.Verify(context.Background(), testPhone, code)
	require.ErrorIs(t, err, utils.ErrInvalidOrExpiredCode)
}

func TestVerifyOtpExpiredCodeFails(t *testing.T) {
	cfg := newTestConfig()
	cfg.OtpExpiry = -time.Minute
	sender := &recordingSender{}
	svc := NewOTPService(
		newFakeOtpRepo(),
		newFakeUserRepo(),
		NewSessionService(newFakeSessionRepo(), cfg),
		NewRateLimiterService(newFakeRateLimitRepo(), cfg),
		sender,
		cfg,
	)

	_, err := svc.Send(context.Background(), testPhone, testIP)
	require.NoError(t, err)

	sender.mu.Lock()
	body := sender.messages[len(sender.messages)-1]
	sender.mu.Unlock()
	parts := strings.Fields(body)
	code := parts[len(parts)-1]

	// Even the correct code must be rejected once the challenge has expired.
	_, err = svc.Verify(context.Background(), testPhone, code)
	require.ErrorIs(t, err, utils.ErrInvalidOrExpiredCode)
}

func TestVerifyOtpNewUserGetsNoSession(t *testing.T) {
	env := newOtpTestEnv(t)

	_, err := env.svc.Send(context.Background(), testPhone, testIP)
	require.NoError(t, err)

	result, err := env.svc.Verify(context.Background(), testPhone, env.sentCode(t))
	require.NoError(t, err)
	require.True(t, result.Matched)
	require.True(t, result.IsNewUser)
	require.Nil(t, result.User)
	require.Empty(t, result.AccessToken)
}

func TestVerifyOtpExistingUserGetsSession(t *testing.T) {
	env := newOtpTestEnv(t)

	// Pre-register through the real flow.
	_, err := env.svc.Send(context.Background(), testPhone, testIP)
	require.NoError(t, err)
	_, err = env.svc.Verify(context.Background(), testPhone, env.sentCode(t))
	require.NoError(t, err)
	user, _, err := env.svc.Register(context.Background(), testPhone, "Ada")
	require.NoError(t, err)

	_, err = env.svc.Send(context.Background(), testPhone, testIP)
	require.NoError(t, err)
	result, err := env.svc.Verify(context.Background(), testPhone, env.sentCode(t))
	require.NoError(t, err)
	require.False(t, result.IsNewUser)
	require.Equal(t, user.ID, result.User.ID)
	require.NotEmpty(t, result.AccessToken)

	// The issued token must validate.
	userID, _, err := env.sessions.Validate(context.Background(), result.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, userID)
}

func TestRegisterRequiresRecentVerification(t *testing.T) {
	env := newOtpTestEnv(t)

	_, _, err := env.svc.Register(context.Background(), testPhone, "Ada")
	require.ErrorIs(t, err, utils.ErrPhoneNotVerified)

	// Sending alone is not enough; the code must be consumed first.
	_, err = env.svc.Send(context.Background(), testPhone, testIP)
	require.NoError(t, err)
	_, _, err = env.svc.Register(context.Background(), testPhone, "Ada")
	require.ErrorIs(t, err, utils.ErrPhoneNotVerified)
}

func TestRegisterCreatesUserAndSession(t *testing.T) {
	env := newOtpTestEnv(t)

	_, err := env.svc.Send(context.Background(), testPhone, testIP)
	require.NoError(t, err)
	_, err = env.svc.Verify(context.Background(), testPhone, env.sentCode(t))
	require.NoError(t, err)

	user, token, err := env.svc.Register(context.Background(), testPhone, "Ada")
	require.NoError(t, err)
	require.Equal(t, testPhone, user.Phone)
	require.Equal(t, "Ada", user.DisplayName)
	require.NotEmpty(t, token)

	// Registering the same phone twice is a conflict.
	_, _, err = env.svc.Register(context.Background(), testPhone, "Ada Again")
	require.ErrorIs(t, err, utils.ErrUserExists)
}

package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/questhunt/quest-backend/internal/config"
	"github.com/questhunt/quest-backend/internal/models"
)

// In-memory repository fakes. Each guards its state with a mutex and
// preserves the conditional-update semantics of the real SQL, so the
// concurrency tests exercise the same winner-takes-all behavior.

func newTestConfig() *config.Config {
	return &config.Config{
		AppName:   "quest-backend-test",
		JWTSecret: []byte("test-secret-key-for-unit-tests"),

		OtpCodeLength:      config.OtpCodeLength,
		OtpExpiry:          config.DefaultOtpExpiry,
		RegistrationWindow: config.DefaultRegistrationWindow,
		SessionExpiry:      config.DefaultSessionExpiry,

		CaptchaWidth:  config.DefaultCaptchaWidth,
		CaptchaHeight: config.DefaultCaptchaHeight,
		CaptchaLength: config.DefaultCaptchaLength,
		CaptchaTTL:    config.DefaultCaptchaTTL,

		QrDefaultMaxAccess: config.DefaultQrMaxAccess,

		SMSLimitPerIPPerHour:    config.DefaultSMSLimitPerIPPerHour,
		SMSLimitPerPhonePerHour: config.DefaultSMSLimitPerPhonePerHour,
		GlobalSMSLimitPerHour:   config.DefaultGlobalSMSLimitPerHour,
		RateLimitWindow:         config.DefaultRateLimitWindow,
	}
}

type fakeOtpRepo struct {
	mu         sync.Mutex
	challenges map[uuid.UUID]*models.OtpChallenge
}

func newFakeOtpRepo() *fakeOtpRepo {
	return &fakeOtpRepo{challenges: make(map[uuid.UUID]*models.OtpChallenge)}
}

func (r *fakeOtpRepo) Create(_ context.Context, c *models.OtpChallenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	cp.CreatedAt = time.Now()
	r.challenges[c.ID] = &cp
	return nil
}

func (r *fakeOtpRepo) GetLatestMatching(_ context.Context, phone, code string) (*models.OtpChallenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.OtpChallenge
	for _, c := range r.challenges {
		if c.Phone != phone || c.Code != code || c.Used || time.Now().After(c.ExpiresAt) {
			continue
		}
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *fakeOtpRepo) Consume(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.challenges[id]
	if !ok || c.Used || time.Now().After(c.ExpiresAt) {
		return false, nil
	}
	now := time.Now()
	c.Used = true
	c.UsedAt = &now
	return true, nil
}

func (r *fakeOtpRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.challenges, id)
	return nil
}

func (r *fakeOtpRepo) WasRecentlyConsumed(_ context.Context, phone string, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-window)
	for _, c := range r.challenges {
		if c.Phone == phone && c.Used && c.UsedAt != nil && c.UsedAt.After(cutoff) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOtpRepo) CleanupExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.challenges {
		if time.Now().After(c.ExpiresAt) {
			delete(r.challenges, id)
		}
	}
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByPhone(_ context.Context, phone string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*models.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	cp.CreatedAt = time.Now()
	r.sessions[s.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) Revoke(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.Revoked = true
	}
	return nil
}

func (r *fakeSessionRepo) CleanupExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.Revoked || time.Now().After(s.ExpiresAt) {
			delete(r.sessions, id)
		}
	}
	return nil
}

type fakeQrTokenRepo struct {
	mu      sync.Mutex
	tokens  map[uuid.UUID]*models.QrAccessToken
	creates int

	// createErr is returned once creates exceeds failAfterCreates.
	createErr        error
	failAfterCreates int
}

func newFakeQrTokenRepo() *fakeQrTokenRepo {
	return &fakeQrTokenRepo{tokens: make(map[uuid.UUID]*models.QrAccessToken)}
}

func (r *fakeQrTokenRepo) Create(_ context.Context, t *models.QrAccessToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil && r.creates >= r.failAfterCreates {
		return r.createErr
	}
	r.creates++
	cp := *t
	r.tokens[t.ID] = &cp
	return nil
}

func (r *fakeQrTokenRepo) GetByToken(_ context.Context, token string) (*models.QrAccessToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.Token == token {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeQrTokenRepo) ConsumeOnce(_ context.Context, id uuid.UUID, userID *uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok || !t.Active || t.AccessCount >= t.MaxAccessCount {
		return false, nil
	}
	now := time.Now()
	t.AccessCount++
	t.Used = t.AccessCount >= t.MaxAccessCount
	if t.UsedAt == nil {
		t.UsedAt = &now
	}
	if t.UsedBy == nil {
		t.UsedBy = userID
	}
	if t.FirstAccessedAt == nil {
		t.FirstAccessedAt = &now
	}
	t.LastAccessedAt = &now
	return true, nil
}

func (r *fakeQrTokenRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[id]; ok {
		t.Active = false
	}
	return nil
}

type fakeQrLogRepo struct {
	mu      sync.Mutex
	entries []*models.QrAccessLog
}

func newFakeQrLogRepo() *fakeQrLogRepo {
	return &fakeQrLogRepo{}
}

func (r *fakeQrLogRepo) Create(_ context.Context, entry *models.QrAccessLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *entry
	cp.CreatedAt = time.Now()
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *fakeQrLogRepo) CountByTokenID(_ context.Context, tokenID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.TokenID != nil && *e.TokenID == tokenID {
			n++
		}
	}
	return n, nil
}

func (r *fakeQrLogRepo) all() []*models.QrAccessLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.QrAccessLog, len(r.entries))
	copy(out, r.entries)
	return out
}

type fakeSubmissionRepo struct {
	mu          sync.Mutex
	submissions map[uuid.UUID]*models.AnswerSubmission
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{submissions: make(map[uuid.UUID]*models.AnswerSubmission)}
}

func (r *fakeSubmissionRepo) Create(_ context.Context, s *models.AnswerSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	cp.CreatedAt = time.Now()
	r.submissions[s.ID] = &cp
	return nil
}

func (r *fakeSubmissionRepo) GetByID(_ context.Context, id uuid.UUID) (*models.AnswerSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.submissions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSubmissionRepo) HasPending(_ context.Context, userID uuid.UUID, gameNumber int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.submissions {
		if s.UserID == userID && s.GameNumber == gameNumber && s.Status == models.SubmissionPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSubmissionRepo) ReviewIfPending(_ context.Context, id uuid.UUID, reviewer string, status models.SubmissionStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.submissions[id]
	if !ok || s.Status != models.SubmissionPending {
		return false, nil
	}
	now := time.Now()
	s.Status = status
	s.ReviewedBy = &reviewer
	s.ReviewedAt = &now
	return true, nil
}

type fakeRateLimitRepo struct {
	mu     sync.Mutex
	counts map[string]int
}

func newFakeRateLimitRepo() *fakeRateLimitRepo {
	return &fakeRateLimitRepo{counts: make(map[string]int)}
}

func (r *fakeRateLimitRepo) IncrementAndCheck(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[key]++
	return r.counts[key] <= limit, nil
}

func (r *fakeRateLimitRepo) CleanupExpired(_ context.Context) error {
	return nil
}

// recordingSender captures sent messages; failingSender always errors.

type recordingSender struct {
	mu       sync.Mutex
	messages []string
	to       []string
}

func (s *recordingSender) Send(_ context.Context, to, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.to = append(s.to, to)
	s.messages = append(s.messages, body)
	return nil
}

type failingSender struct{}

func (failingSender) Send(context.Context, string, string) error {
	return context.DeadlineExceeded
}

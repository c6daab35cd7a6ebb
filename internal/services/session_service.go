package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/questhunt/quest-backend/internal/config"
	"github.com/questhunt/quest-backend/internal/models"
	"github.com/questhunt/quest-backend/internal/repositories"
	"github.com/questhunt/quest-backend/internal/utils"
)

// SessionService issues and validates the HS256 access tokens handed out
// after a successful OTP verification. Each token is backed by a session
// row so it can be revoked server-side.
type SessionService interface {
	Issue(ctx context.Context, userID uuid.UUID) (string, error)
	// Validate returns the user and session ids carried by a live token.
	Validate(ctx context.Context, token string) (uuid.UUID, uuid.UUID, error)
	Revoke(ctx context.Context, token string) error
}

type sessionService struct {
	sessionRepo repositories.SessionRepository
	cfg         *config.Config
}

func NewSessionService(sessionRepo repositories.SessionRepository, cfg *config.Config) SessionService {
	return &sessionService{sessionRepo: sessionRepo, cfg: cfg}
}

func (s *sessionService) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	sessionID := uuid.New()
	expiresAt := time.Now().Add(s.cfg.SessionExpiry)

	claims := jwt.MapClaims{
		"sub": userID.String(),
		"sid": sessionID.String(),
		"iat": time.Now().Unix(),
		"exp": expiresAt.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.JWTSecret)
	if err != nil {
		return "", err
	}

	session := &models.Session{
		ID:        sessionID,
		UserID:    userID,
		TokenHash: hashToken(signed),
		ExpiresAt: expiresAt,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", err
	}
	return signed, nil
}

func (s *sessionService) Validate(ctx context.Context, token string) (uuid.UUID, uuid.UUID, error) {
	userID, sessionID, err := s.parse(token)
	if err != nil {
		return uuid.Nil, uuid.Nil, utils.ErrInvalidSession
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if session == nil || session.Revoked || time.Now().After(session.ExpiresAt) {
		return uuid.Nil, uuid.Nil, utils.ErrInvalidSession
	}
	if session.TokenHash != hashToken(token) || session.UserID != userID {
		return uuid.Nil, uuid.Nil, utils.ErrInvalidSession
	}
	return userID, sessionID, nil
}

func (s *sessionService) Revoke(ctx context.Context, token string) error {
	_, sessionID, err := s.parse(token)
	if err != nil {
		return utils.ErrInvalidSession
	}
	return s.sessionRepo.Revoke(ctx, sessionID)
}

func (s *sessionService) parse(token string) (uuid.UUID, uuid.UUID, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, utils.ErrInvalidSession
		}
		return s.cfg.JWTSecret, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, uuid.Nil, utils.ErrInvalidSession
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, uuid.Nil, utils.ErrInvalidSession
	}
	sub, _ := claims["sub"].(string)
	sid, _ := claims["sid"].(string)

	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, uuid.Nil, utils.ErrInvalidSession
	}
	sessionID, err := uuid.Parse(sid)
	if err != nil {
		return uuid.Nil, uuid.Nil, utils.ErrInvalidSession
	}
	return userID, sessionID, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

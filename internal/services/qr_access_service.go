package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/questhunt/quest-backend/internal/config"
	"github.com/questhunt/quest-backend/internal/models"
	"github.com/questhunt/quest-backend/internal/repositories"
	"github.com/questhunt/quest-backend/internal/utils"
)

// Requester carries the client metadata recorded with every access attempt.
type Requester struct {
	IP           string
	UserAgent    string
	UserID       *uuid.UUID
	SessionToken *string
}

// AccessDecision is the structured outcome of a scan. Denials are expected
// outcomes, not errors; only storage faults surface as an error.
type AccessDecision struct {
	Granted    bool
	Reason     *models.DenyReason
	GameNumber int
}

type QRAccessService interface {
	// ValidateAndConsume evaluates a scanned token against the requested
	// game and consumes it on success. Every attempt, whatever the
	// outcome, is recorded in the access log.
	ValidateAndConsume(ctx context.Context, rawToken string, gameNumber int, req Requester) (AccessDecision, error)
	// GenerateBatch creates count opaque tokens for gameNumber, each
	// valid for maxUses grants (0 = configured default).
	GenerateBatch(ctx context.Context, gameNumber, count, maxUses int) ([]*models.QrAccessToken, error)
}

type qrAccessService struct {
	tokenRepo repositories.QrTokenRepository
	logRepo   repositories.QrAccessLogRepository
	cfg       *config.Config
}

func NewQRAccessService(
	tokenRepo repositories.QrTokenRepository,
	logRepo repositories.QrAccessLogRepository,
	cfg *config.Config,
) QRAccessService {
	return &qrAccessService{tokenRepo: tokenRepo, logRepo: logRepo, cfg: cfg}
}

func (s *qrAccessService) ValidateAndConsume(ctx context.Context, rawToken string, gameNumber int, req Requester) (AccessDecision, error) {
	token, err := s.tokenRepo.GetByToken(ctx, rawToken)
	if err != nil {
		return AccessDecision{}, err
	}

	// Malformed or unknown tokens are indistinguishable on purpose.
	if token == nil {
		s.logAttempt(ctx, nil, rawToken, gameNumber, req, models.AccessInvalid, models.DenyUnknownToken)
		return denied(models.DenyUnknownToken, gameNumber), nil
	}

	if token.GameNumber != gameNumber {
		s.logAttempt(ctx, token, rawToken, gameNumber, req, models.AccessDenied, models.DenyGameMismatch)
		return denied(models.DenyGameMismatch, gameNumber), nil
	}

	if !token.Active {
		s.logAttempt(ctx, token, rawToken, gameNumber, req, models.AccessDenied, models.DenyInactive)
		return denied(models.DenyInactive, gameNumber), nil
	}

	if token.Used || token.Exhausted() {
		s.logAttempt(ctx, token, rawToken, gameNumber, req, models.AccessDenied, models.DenyAlreadyUsed)
		return denied(models.DenyAlreadyUsed, gameNumber), nil
	}

	consumed, err := s.tokenRepo.ConsumeOnce(ctx, token.ID, req.UserID)
	if err != nil {
		return AccessDecision{}, err
	}
	if !consumed {
		// Lost the race against a simultaneous scan.
		s.logAttempt(ctx, token, rawToken, gameNumber, req, models.AccessDenied, models.DenyAlreadyUsed)
		return denied(models.DenyAlreadyUsed, gameNumber), nil
	}

	s.logAttempt(ctx, token, rawToken, gameNumber, req, models.AccessGranted, "")
	return AccessDecision{Granted: true, GameNumber: gameNumber}, nil
}

func (s *qrAccessService) GenerateBatch(ctx context.Context, gameNumber, count, maxUses int) ([]*models.QrAccessToken, error) {
	if maxUses <= 0 {
		maxUses = s.cfg.QrDefaultMaxAccess
	}

	batchID := uuid.New().String()
	tokens := make([]*models.QrAccessToken, 0, count)
	for i := 0; i < count; i++ {
		raw, err := utils.RandomToken(16)
		if err != nil {
			return nil, err
		}
		t := &models.QrAccessToken{
			ID:             uuid.New(),
			Token:          raw,
			GameNumber:     gameNumber,
			Active:         true,
			MaxAccessCount: maxUses,
			Metadata:       map[string]any{"batch_id": batchID},
			CreatedAt:      time.Now(),
		}
		if err := s.tokenRepo.Create(ctx, t); err != nil {
			// A mid-batch failure must not leave scannable stragglers.
			s.deactivateAll(ctx, tokens)
			return nil, err
		}
		tokens = append(tokens, t)
	}
	utils.Logger.Infof("Generated %d QR tokens for game %d (batch %s)", count, gameNumber, batchID)
	return tokens, nil
}

// deactivateAll retires every already-persisted token of a failed batch.
// Best effort: a token that cannot be deactivated is logged and left for
// the operator.
func (s *qrAccessService) deactivateAll(ctx context.Context, tokens []*models.QrAccessToken) {
	for _, t := range tokens {
		if err := s.tokenRepo.Deactivate(ctx, t.ID); err != nil {
			utils.Logger.WithError(err).Errorf("Failed to deactivate token %s from failed batch", t.ID)
		}
	}
}

// logAttempt appends exactly one audit row for the attempt. The decision
// stands even if the insert fails; the failure is logged server-side.
func (s *qrAccessService) logAttempt(
	ctx context.Context,
	token *models.QrAccessToken,
	rawToken string,
	gameNumber int,
	req Requester,
	status models.AccessStatus,
	reason models.DenyReason,
) {
	entry := &models.QrAccessLog{
		ID:           uuid.New(),
		RawToken:     rawToken,
		GameNumber:   gameNumber,
		UserID:       req.UserID,
		SessionToken: req.SessionToken,
		Status:       status,
		IP:           req.IP,
		UserAgent:    req.UserAgent,
	}
	if token != nil {
		entry.TokenID = &token.ID
	}
	if reason != "" {
		r := reason
		entry.DenyReason = &r
	}
	if err := s.logRepo.Create(ctx, entry); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to write access log for token %q", rawToken)
	}
}

func denied(reason models.DenyReason, gameNumber int) AccessDecision {
	r := reason
	return AccessDecision{Reason: &r, GameNumber: gameNumber}
}

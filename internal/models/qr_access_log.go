package models

import (
	"time"

	"github.com/google/uuid"
)

type AccessStatus string

const (
	AccessGranted AccessStatus = "granted"
	AccessDenied  AccessStatus = "denied"
	AccessInvalid AccessStatus = "invalid"
)

type DenyReason string

const (
	DenyUnknownToken DenyReason = "unknown_token"
	DenyGameMismatch DenyReason = "game_mismatch"
	DenyInactive     DenyReason = "inactive"
	DenyAlreadyUsed  DenyReason = "already_used"
)

// QrAccessLog for the qr_access_logs table. Append-only: exactly one row
// per access attempt regardless of outcome, never mutated after creation.
type QrAccessLog struct {
	ID           uuid.UUID
	TokenID      *uuid.UUID // nil when the raw token is unknown
	RawToken     string
	GameNumber   int
	UserID       *uuid.UUID
	SessionToken *string
	Status       AccessStatus
	DenyReason   *DenyReason
	IP           string
	UserAgent    string
	CreatedAt    time.Time
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// QrAccessToken for the qr_access_tokens table. Tokens are batch-generated
// before printing and are never deleted; consumption is tracked via the
// used flag and access counters for audit.
type QrAccessToken struct {
	ID              uuid.UUID
	Token           string
	GameNumber      int
	Active          bool
	Used            bool
	UsedAt          *time.Time
	UsedBy          *uuid.UUID
	AccessCount     int
	MaxAccessCount  int
	FirstAccessedAt *time.Time
	LastAccessedAt  *time.Time
	Metadata        map[string]any
	CreatedAt       time.Time
}

// Exhausted reports whether the token has reached its configured access cap.
func (t *QrAccessToken) Exhausted() bool {
	return t.AccessCount >= t.MaxAccessCount
}

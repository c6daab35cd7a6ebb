package models

import (
	"time"

	"github.com/google/uuid"
)

// OtpChallenge for the otp_challenges table. One row per send attempt;
// verification consumes the row by flipping Used exactly once.
type OtpChallenge struct {
	ID        uuid.UUID
	Phone     string
	Code      string
	SessionID uuid.UUID
	Used      bool
	UsedAt    *time.Time
	ExpiresAt time.Time
	CreatedAt time.Time
}

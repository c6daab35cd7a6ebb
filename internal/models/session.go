package models

import (
	"time"

	"github.com/google/uuid"
)

// Session for the sessions table. TokenHash is the SHA-256 of the issued
// JWT so a stolen database dump cannot replay live tokens.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

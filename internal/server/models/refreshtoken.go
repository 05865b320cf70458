package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is a long-lived opaque credential. At most one non-revoked row
// exists per user; issuing a new token revokes the others first.
type RefreshToken struct {
	ID        int64
	Token     string
	UserID    uuid.UUID
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

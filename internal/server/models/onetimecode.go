package models

import (
	"time"

	"github.com/google/uuid"
)

// OneTimeCode is a single-use 6-digit code bound to a user's email, shared by
// the email verification and password reset flows. A user owns at most one
// row; reissuing overwrites it.
type OneTimeCode struct {
	ID        int64
	Email     string
	Code      string
	ExpiresAt time.Time
	Used      bool
	UserID    uuid.UUID
}

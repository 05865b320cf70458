// Package onetimecodes declares the repository contract for single-use,
// expiring verification codes.
package onetimecodes

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/trainerhub/portal/internal/server/models"
)

// Repository manages one-time codes. Each user owns at most one row;
// reissuing a code overwrites it in place.
type Repository interface {
	// Upsert inserts the user's code row or overwrites the existing one,
	// resetting code, expiry, and the used flag.
	Upsert(ctx context.Context, code *models.OneTimeCode) error

	// Consume atomically marks the unused row matching (email, code) as used
	// and returns the linked user id. Returns common.ErrInvalidCode when no
	// unused row matches, common.ErrCodeExpired when the only unused match
	// has already expired (the row is left unused).
	Consume(ctx context.Context, email, code string, now time.Time) (uuid.UUID, error)

	// DeleteExpired removes rows whose expiry is strictly before now and
	// returns the number deleted.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

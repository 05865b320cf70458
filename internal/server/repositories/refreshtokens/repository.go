// Package refreshtokens declares the repository contract for managing
// refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/trainerhub/portal/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking
// refresh tokens. Issuance composes RevokeAllForUser and Create inside one
// transaction so at most one non-revoked token exists per user.
type Repository interface {
	// Create stores a new refresh token for userID expiring at expiresAt.
	Create(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error

	// Find looks up a refresh token by its opaque token string. Returns
	// common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Revoke marks the token as revoked. Returns common.ErrorNotFound when
	// the token string is unknown; revoking an already revoked token is a
	// no-op success.
	Revoke(ctx context.Context, token string) error

	// RevokeAllForUser marks every non-revoked token of the user as revoked.
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error

	// DeleteExpired removes rows whose expiry is strictly before now and
	// returns the number deleted.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

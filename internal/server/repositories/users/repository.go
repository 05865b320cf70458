// Package users declares the repository contract for durable user records.
package users

import (
	"context"

	"github.com/google/uuid"
	"github.com/trainerhub/portal/internal/server/models"
)

// Repository defines the credential store operations. Plaintext passwords
// never reach this layer; callers pass bcrypt digests only.
type Repository interface {
	// Create inserts a new user row and returns it with the generated id.
	// A duplicate username or email yields common.ErrorConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByUsername returns the user with the given username, or
	// common.ErrorNotFound.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetByEmail returns the user with the given email, or
	// common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the user with the given id, or common.ErrorNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// Activate flips the user's active flag to true.
	Activate(ctx context.Context, userID uuid.UUID) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

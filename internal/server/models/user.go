// Package models holds the persisted row types shared by the server-side
// repositories and services.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a portal account. Active stays false until the email is verified.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	Roles        []string
	Active       bool
	CreatedAt    time.Time
}

// HasRole reports whether the user carries the given role name.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

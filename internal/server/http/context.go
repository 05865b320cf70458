// Package http exposes the portal's REST surface: the chi router, the auth
// endpoint handlers, and the bearer-token middleware that authenticates
// requests.
package http

import "context"

// Identity is the authenticated caller attached to the request context by
// the bearer-token middleware.
type Identity struct {
	Subject string
	Roles   []string
}

// HasRole reports whether the identity carries the given role name.
func (id Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type ctxKey int

const identityKey ctxKey = 0

// WithIdentity returns a child context carrying the identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext extracts the identity set by the middleware; ok is
// false for unauthenticated requests.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

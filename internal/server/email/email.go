// Package email defines the outbound email contract used by the registration
// and password-reset flows, plus an SMTP implementation over go-mail.
package email

import "context"

// Sender delivers one-time codes to users. Failures are returned to the
// caller; the flows decide whether to surface them, never this layer.
type Sender interface {
	SendVerificationEmail(ctx context.Context, to, code string) error
	SendPasswordResetEmail(ctx context.Context, to, code string) error
}

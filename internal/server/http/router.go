package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/trainerhub/portal/internal/logging"
)

// NewRouter assembles the REST surface. Every request passes through the
// bearer-token gate; the auth endpoints themselves stay open so clients can
// obtain tokens.
func NewRouter(h *AuthHandler, secretKey []byte, logger logging.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(Authenticator(secretKey, logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register/initiate", h.InitiateRegistration)
			r.Post("/register/verify", h.VerifyRegistration)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.Refresh)
			r.Post("/logout", h.Logout)
			r.Post("/password/reset/initiate", h.InitiatePasswordReset)
			r.Post("/password/reset/confirm", h.ConfirmPasswordReset)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth)
			r.Get("/me", h.Me)
		})
	})

	return r
}

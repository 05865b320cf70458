package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"

	"github.com/trainerhub/portal/internal/logging"
	"github.com/trainerhub/portal/internal/server/services"
)

const minPasswordLength = 6

// RegistrationFlow is the slice of the registration service the handlers
// need; the concrete implementation is services.RegistrationService.
type RegistrationFlow interface {
	Initiate(ctx context.Context, req services.RegistrationRequest) error
	Verify(ctx context.Context, email, code string) error
}

// AuthFlow is the slice of the authentication service the handlers need; the
// concrete implementation is services.AuthService.
type AuthFlow interface {
	Login(ctx context.Context, identifier, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	InitiatePasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error
}

// AuthHandler serves the /api/v1/auth endpoints.
type AuthHandler struct {
	registration RegistrationFlow
	auth         AuthFlow
	logger       logging.Logger
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(registration RegistrationFlow, auth AuthFlow, logger logging.Logger) *AuthHandler {
	return &AuthHandler{registration: registration, auth: auth, logger: logger}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

func (r *registerRequest) validate() map[string]string {
	fields := map[string]string{}
	if r.Username == "" {
		fields["username"] = "username is required"
	}
	if !validEmail(r.Email) {
		fields["email"] = "a valid email is required"
	}
	if len(r.Password) < minPasswordLength {
		fields["password"] = "password must be at least 6 characters"
	}
	if r.Role == "" {
		fields["role"] = "role is required"
	}
	return fields
}

func (h *AuthHandler) InitiateRegistration(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	err := h.registration.Initiate(r.Context(), services.RegistrationRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse("Verification code sent to "+req.Email, nil))
}

type verificationRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (r *verificationRequest) validate() map[string]string {
	fields := map[string]string{}
	if !validEmail(r.Email) {
		fields["email"] = "a valid email is required"
	}
	if len(r.Code) != 6 {
		fields["code"] = "a 6-digit code is required"
	}
	return fields
}

func (h *AuthHandler) VerifyRegistration(w http.ResponseWriter, r *http.Request) {
	var req verificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	if err := h.registration.Verify(r.Context(), req.Email, req.Code); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse("User registered successfully", nil))
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

func newTokenResponse(pair *services.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    pair.ExpiresIn,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}
	if req.Identifier == "" || req.Password == "" {
		writeFieldErrors(w, map[string]string{"identifier": "identifier and password are required"})
		return
	}

	pair, err := h.auth.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		// One generic message for every credential failure; anything more
		// specific would allow account enumeration.
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse("Login successful", newTokenResponse(pair)))
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse("refresh token is required"))
		return
	}

	pair, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse("Token refreshed", newTokenResponse(pair)))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse("refresh token is required"))
		return
	}

	if err := h.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse("Logged out", nil))
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) InitiatePasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !validEmail(req.Email) {
		writeJSON(w, http.StatusBadRequest, errorResponse("a valid email is required"))
		return
	}

	if err := h.auth.InitiatePasswordReset(r.Context(), req.Email); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse("Password reset code sent successfully", nil))
}

type passwordResetConfirmRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

func (r *passwordResetConfirmRequest) validate() map[string]string {
	fields := map[string]string{}
	if !validEmail(r.Email) {
		fields["email"] = "a valid email is required"
	}
	if len(r.Code) != 6 {
		fields["code"] = "a 6-digit code is required"
	}
	if len(r.NewPassword) < minPasswordLength {
		fields["newPassword"] = "password must be at least 6 characters"
	}
	return fields
}

func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	if err := h.auth.ConfirmPasswordReset(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse("Password reset successful", nil))
}

// Me returns the authenticated identity; mounted behind RequireAuth.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"username": id.Subject,
		"roles":    id.Roles,
	})
}

func validEmail(s string) bool {
	if s == "" {
		return false
	}
	_, err := mail.ParseAddress(s)
	return err == nil
}

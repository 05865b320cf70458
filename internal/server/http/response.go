package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/trainerhub/portal/internal/common"
)

// apiResponse is the JSON envelope shared by the auth endpoints.
type apiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func successResponse(message string, data any) apiResponse {
	return apiResponse{Status: "SUCCESS", Message: message, Data: data}
}

func errorResponse(message string) apiResponse {
	return apiResponse{Status: "ERROR", Message: message}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeFieldErrors reports per-field validation failures with 400.
func writeFieldErrors(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"status": "ERROR",
		"errors": fields,
	})
}

// writeDomainError maps sentinel errors onto stable status codes and
// user-facing messages. Anything unmatched becomes a generic 500 so
// internals never leak.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorConflict):
		writeJSON(w, http.StatusConflict, errorResponse("username or email is already taken"))
	case errors.Is(err, common.ErrInvalidCode):
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid code"))
	case errors.Is(err, common.ErrCodeExpired):
		writeJSON(w, http.StatusBadRequest, errorResponse("code has expired"))
	case errors.Is(err, common.ErrorNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse("not found"))
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrRefreshTokenRevoked),
		errors.Is(err, common.ErrRefreshTokenExpired),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenMalformed),
		errors.Is(err, common.ErrTokenUnsupported):
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
	case errors.Is(err, common.ErrorForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse("forbidden"))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal error"))
	}
}

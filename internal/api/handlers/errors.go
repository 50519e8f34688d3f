package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hugh/secretstuffs/internal/api/dto"
	"github.com/hugh/secretstuffs/internal/auth"
)

type errorMapping struct {
	err    error
	code   string
	status int
}

var errorMappings = []errorMapping{
	{auth.ErrEmailAlreadyTaken, "EMAIL_ALREADY_TAKEN", http.StatusConflict},
	{auth.ErrUserNotFound, "USER_NOT_FOUND", http.StatusNotFound},
	{auth.ErrUserNotVerified, "USER_NOT_VERIFIED", http.StatusUnauthorized},
	{auth.ErrUserAlreadyActive, "USER_ALREADY_ACTIVE", http.StatusBadRequest},
	{auth.ErrInvalidCredentials, "INVALID_CREDENTIALS", http.StatusUnauthorized},
	{auth.ErrInvalidOldPassword, "INVALID_OLD_PASSWORD", http.StatusBadRequest},
	{auth.ErrPasswordsDoNotMatch, "PASSWORDS_DO_NOT_MATCH", http.StatusBadRequest},
	{auth.ErrInvalidToken, "INVALID_TOKEN", http.StatusBadRequest},
	{auth.ErrExpiredToken, "EXPIRED_TOKEN", http.StatusBadRequest},
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, dto.NewResponse(status, message, data))
}

// writeError maps a service error to its stable code. Anything unmapped is
// logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			writeJSON(w, m.status, dto.NewError(m.status, m.code, errorMessage(m.err)))
			return
		}
	}

	slog.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeJSON(w, http.StatusInternalServerError,
		dto.NewError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An unexpected error occurred"))
}

func writeValidationError(w http.ResponseWriter, fields map[string]string) {
	resp := dto.NewError(http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed")
	resp.Errors = fields
	writeJSON(w, http.StatusBadRequest, resp)
}

func writeUnreadable(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest,
		dto.NewError(http.StatusBadRequest, "MESSAGE_NOT_READABLE", "Malformed JSON request"))
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrEmailAlreadyTaken):
		return "Email is already taken"
	case errors.Is(err, auth.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, auth.ErrUserNotVerified):
		return "User is not verified"
	case errors.Is(err, auth.ErrUserAlreadyActive):
		return "User is already active"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, auth.ErrInvalidOldPassword):
		return "Old password is incorrect"
	case errors.Is(err, auth.ErrPasswordsDoNotMatch):
		return "Passwords do not match"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token has expired"
	default:
		return "Invalid token"
	}
}

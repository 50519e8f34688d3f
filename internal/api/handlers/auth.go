package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hugh/secretstuffs/internal/api/dto"
	"github.com/hugh/secretstuffs/internal/api/validation"
	"github.com/hugh/secretstuffs/internal/auth"
)

const (
	MsgRegistered      = "User created successfully. A verification email has been sent."
	MsgLoggedIn        = "Login successful"
	MsgResent          = "Verification email resent successfully"
	MsgResendFailed    = "Failed to resend verification email. Please try again later."
	MsgPasswordsDiffer = "Passwords do not match"
)

type AuthHandler struct {
	authService *auth.Service
	frontendURL string
}

// NewAuthHandler wires the auth endpoints. frontendURL is where verify-email
// redirects the browser once the link has been handled.
func NewAuthHandler(authService *auth.Service, frontendURL string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeUnreadable(w)
		return
	}

	req.Normalize()
	if errors := req.Validate(); len(errors) > 0 {
		writeValidationError(w, errors)
		return
	}

	resp, err := h.authService.Register(r.Context(), auth.RegisterInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Password:        req.Password,
		ProfileImageURL: req.ProfileImageURL,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, MsgRegistered, resp)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeUnreadable(w)
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeValidationError(w, errors)
		return
	}

	resp, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, MsgLoggedIn, resp)
}

// VerifyEmail handles GET /api/auth/verify-email. The browser always lands on
// the frontend, with the result in the status query parameter.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	status := "failure"

	ok, err := h.authService.VerifyEmailToken(r.Context(), r.URL.Query().Get("token"))
	switch {
	case err == nil && ok:
		status = "success"
	case errors.Is(err, auth.ErrInfrastructure):
		slog.ErrorContext(r.Context(), "email verification failed", "error", err)
	}

	http.Redirect(w, r, h.frontendURL+"/auth?status="+status, http.StatusFound)
}

// ResendVerificationEmail handles POST /api/auth/resend-verification-email
func (h *AuthHandler) ResendVerificationEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeValidationError(w, map[string]string{"email": "Email is required"})
		return
	}

	sent, err := h.authService.ResendVerificationEmail(r.Context(), email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !sent {
		writeSuccess(w, http.StatusBadRequest, MsgResendFailed, nil)
		return
	}

	writeSuccess(w, http.StatusOK, MsgResent, nil)
}

// ForgotPassword handles POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeValidationError(w, map[string]string{"email": "Email is required"})
		return
	}
	if !validation.IsValidEmail(email) {
		writeValidationError(w, map[string]string{"email": "Email format is invalid"})
		return
	}

	resp, err := h.authService.ForgotPassword(r.Context(), email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp.Message, nil)
}

// ResetPassword handles POST /api/auth/reset-password. Parameters come from the
// query string or a form body.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	req := dto.ResetPasswordRequest{
		Token:           r.FormValue("token"),
		NewPassword:     r.FormValue("newPassword"),
		ConfirmPassword: r.FormValue("confirmPassword"),
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeValidationError(w, errors)
		return
	}

	if req.NewPassword != req.ConfirmPassword {
		writeSuccess(w, http.StatusBadRequest, MsgPasswordsDiffer, "PASSWORD_MISMATCH")
		return
	}

	resp, err := h.authService.ResetPassword(r.Context(), req.Token, req.NewPassword)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp.Message, nil)
}

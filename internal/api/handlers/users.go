package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/secretstuffs/internal/api/dto"
	"github.com/hugh/secretstuffs/internal/api/middleware"
	"github.com/hugh/secretstuffs/internal/auth"
	"github.com/hugh/secretstuffs/internal/avatars"
	"github.com/hugh/secretstuffs/internal/users"
)

const (
	MsgUserFetched     = "User fetched successfully"
	MsgUsersFetched    = "Users fetched successfully"
	MsgUserUpdated     = "User updated successfully"
	MsgPasswordChanged = "Password changed successfully"
	MsgUserDeleted     = "User deleted successfully"
	MsgUploadCreated   = "Upload URL created"
)

type UserHandler struct {
	users   *users.Service
	auth    *auth.Service
	avatars *avatars.Service
}

// NewUserHandler wires the profile endpoints. avatars may be nil when no
// bucket is configured.
func NewUserHandler(usersService *users.Service, authService *auth.Service, avatarService *avatars.Service) *UserHandler {
	return &UserHandler{
		users:   usersService,
		auth:    authService,
		avatars: avatarService,
	}
}

// Me handles GET /api/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), middleware.GetUserEmail(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, MsgUserFetched, dto.NewUserDTO(user))
}

// Get handles GET /api/users/{email}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, MsgUserFetched, dto.NewUserDTO(user))
}

// List handles GET /api/users/
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	pagination := dto.PaginationParams{Page: page, PerPage: perPage}
	pagination.Normalize()

	list, total, err := h.users.List(r.Context(), pagination.Page, pagination.PerPage)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items := make([]dto.UserDTO, len(list))
	for i := range list {
		items[i] = dto.NewUserDTO(&list[i])
	}

	writeSuccess(w, http.StatusOK, MsgUsersFetched, dto.PaginatedResponse{
		Items:      items,
		Total:      total,
		Page:       pagination.Page,
		PerPage:    pagination.PerPage,
		TotalPages: pagination.TotalPages(total),
	})
}

// Update handles PUT /api/users/update
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeUnreadable(w)
		return
	}

	req.Normalize()
	if errors := req.Validate(); len(errors) > 0 {
		writeValidationError(w, errors)
		return
	}

	user, err := h.users.Update(r.Context(), middleware.GetUserEmail(r.Context()), users.UpdateInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		ProfileImageURL: req.ProfileImageURL,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, MsgUserUpdated, dto.NewUserDTO(user))
}

// ChangePassword handles PUT /api/users/change-password
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeUnreadable(w)
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeValidationError(w, errors)
		return
	}

	err := h.auth.ChangePassword(r.Context(), auth.ChangePasswordInput{
		Email:           middleware.GetUserEmail(r.Context()),
		OldPassword:     req.OldPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, MsgPasswordChanged, nil)
}

// Delete handles DELETE /api/users/delete/{email}. Accounts can only delete
// themselves.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email != middleware.GetUserEmail(r.Context()) {
		writeJSON(w, http.StatusForbidden,
			dto.NewError(http.StatusForbidden, "FORBIDDEN", "You can only delete your own account"))
		return
	}

	if err := h.users.Delete(r.Context(), email); err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, MsgUserDeleted, nil)
}

// AvatarUpload handles POST /api/users/me/avatar-upload
func (h *UserHandler) AvatarUpload(w http.ResponseWriter, r *http.Request) {
	if h.avatars == nil {
		writeJSON(w, http.StatusServiceUnavailable,
			dto.NewError(http.StatusServiceUnavailable, "AVATARS_DISABLED", "Avatar uploads are not configured"))
		return
	}

	var req dto.AvatarUploadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeUnreadable(w)
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeValidationError(w, errors)
		return
	}

	user, err := h.users.Get(r.Context(), middleware.GetUserEmail(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	upload, err := h.avatars.PresignUpload(r.Context(), user.ID, req.ContentType)
	if errors.Is(err, avatars.ErrUnsupportedContentType) {
		writeValidationError(w, map[string]string{"content_type": "Content type must be jpeg, png, webp or gif"})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, MsgUploadCreated, upload)
}

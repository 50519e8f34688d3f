package dto

import (
	"github.com/hugh/secretstuffs/internal/api/validation"
	"github.com/hugh/secretstuffs/internal/database/models"
)

type UserDTO struct {
	ID              uint   `json:"id"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	Active          bool   `json:"active"`
}

func NewUserDTO(u *models.User) UserDTO {
	return UserDTO{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		ProfileImageURL: u.ProfileImageURL,
		Active:          u.Active,
	}
}

type UpdateUserRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	ProfileImageURL string `json:"profile_image_url"`
}

func (r *UpdateUserRequest) Normalize() {
	r.FirstName = validation.SanitizeString(r.FirstName)
	r.LastName = validation.SanitizeString(r.LastName)
}

func (r UpdateUserRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if !validation.IsValidName(r.FirstName) {
		errors["first_name"] = "First name is required"
	}
	if !validation.IsValidName(r.LastName) {
		errors["last_name"] = "Last name is required"
	}
	if !validation.IsValidImageURL(r.ProfileImageURL) {
		errors["profile_image_url"] = "Profile image URL must be an http(s) URL"
	}

	return errors
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r ChangePasswordRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.OldPassword == "" {
		errors["old_password"] = "Old password is required"
	}
	if r.NewPassword == "" {
		errors["new_password"] = "New password is required"
	} else if ok, msg := validation.IsValidPassword(r.NewPassword); !ok {
		errors["new_password"] = msg
	}
	if r.ConfirmPassword == "" {
		errors["confirm_password"] = "Confirm password is required"
	}

	return errors
}

type AvatarUploadRequest struct {
	ContentType string `json:"content_type"`
}

func (r AvatarUploadRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.ContentType == "" {
		errors["content_type"] = "Content type is required"
	}
	return errors
}

package dto

import (
	"github.com/hugh/secretstuffs/internal/api/validation"
)

type RegisterRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

// Normalize trims display fields. Email and password are kept byte for byte.
func (r *RegisterRequest) Normalize() {
	r.FirstName = validation.SanitizeString(r.FirstName)
	r.LastName = validation.SanitizeString(r.LastName)
}

func (r RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.FirstName == "" {
		errors["first_name"] = "First name is required"
	} else if !validation.IsValidName(r.FirstName) {
		errors["first_name"] = "First name is too long"
	}
	if r.LastName == "" {
		errors["last_name"] = "Last name is required"
	} else if !validation.IsValidName(r.LastName) {
		errors["last_name"] = "Last name is too long"
	}
	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Email format is invalid"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if ok, msg := validation.IsValidPassword(r.Password); !ok {
		errors["password"] = msg
	}
	if !validation.IsValidImageURL(r.ProfileImageURL) {
		errors["profile_image_url"] = "Profile image URL must be an http(s) URL"
	}

	return errors
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type ResetPasswordRequest struct {
	Token           string
	NewPassword     string
	ConfirmPassword string
}

func (r ResetPasswordRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Token == "" {
		errors["token"] = "Token is required"
	}
	if r.NewPassword == "" {
		errors["newPassword"] = "New password is required"
	} else if ok, msg := validation.IsValidPassword(r.NewPassword); !ok {
		errors["newPassword"] = msg
	}
	if r.ConfirmPassword == "" {
		errors["confirmPassword"] = "Confirm password is required"
	}

	return errors
}

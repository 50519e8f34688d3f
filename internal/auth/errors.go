package auth

import (
	"errors"
	"fmt"
)

var (
	ErrEmailAlreadyTaken   = errors.New("email already taken")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserNotVerified     = errors.New("user not verified")
	ErrUserAlreadyActive   = errors.New("user already active")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidOldPassword  = errors.New("invalid old password")
	ErrPasswordsDoNotMatch = errors.New("passwords do not match")
	ErrInvalidToken        = errors.New("invalid token")
	ErrExpiredToken        = errors.New("token has expired")

	// ErrInfrastructure marks store and mail transport failures.
	ErrInfrastructure = errors.New("infrastructure failure")
)

func infraErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInfrastructure, op, err)
}

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/hugh/secretstuffs/internal/database/models"
)

// Repository errors. Implementations translate driver errors into these.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository persists users keyed by unique email.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	List(ctx context.Context, offset, limit int) ([]models.User, int64, error)
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, user *models.User) error
	// Activate flips active to true only for an inactive user and reports rows changed.
	Activate(ctx context.Context, email string) (int64, error)
}

// ResetTokenRepository persists single-use password reset tokens.
type ResetTokenRepository interface {
	Save(ctx context.Context, token *models.ResetToken) error
	FindByToken(ctx context.Context, token string) (*models.ResetToken, error)
	Delete(ctx context.Context, token *models.ResetToken) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteForEmail(ctx context.Context, email string) (int64, error)
}

// Store groups the repositories and runs work in a transaction.
type Store interface {
	Users() UserRepository
	ResetTokens() ResetTokenRepository
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

// Notifier delivers verification and reset links out of band.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, email, link string) error
	SendForgotPasswordEmail(ctx context.Context, email, link string) error
}

// Authenticator defines the account workflow exposed to the API layer.
type Authenticator interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterResult, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	VerifyEmailToken(ctx context.Context, token string) (bool, error)
	ResendVerificationEmail(ctx context.Context, email string) (bool, error)
	ForgotPassword(ctx context.Context, email string) (*MessageResult, error)
	ResetPassword(ctx context.Context, token, newPassword string) (*MessageResult, error)
	ChangePassword(ctx context.Context, input ChangePasswordInput) error
}

// TokenService defines the token operations used by middleware.
type TokenService interface {
	ValidateToken(tokenString string) (*Claims, error)
	SubjectIfValid(tokenString string) (string, bool)
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator = (*Service)(nil)
	_ TokenService  = (*JWTService)(nil)
	_ Hasher        = (*BcryptHasher)(nil)
)

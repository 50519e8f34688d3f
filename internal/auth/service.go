package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/secretstuffs/internal/database/models"
)

const (
	DefaultResetTokenTTL = time.Hour

	MsgResetEmailSent = "Password reset email sent!"
	MsgPasswordReset  = "Password successfully reset."
)

type ServiceConfig struct {
	// PublicURL is the externally reachable base URL used in emailed links.
	PublicURL     string
	ResetTokenTTL time.Duration
	Hasher        Hasher
	Clock         Clock
	Logger        *slog.Logger
}

type Service struct {
	store     Store
	tokens    *JWTService
	notifier  Notifier
	hasher    Hasher
	now       Clock
	resetTTL  time.Duration
	publicURL string
	log       *slog.Logger
}

func NewService(store Store, tokens *JWTService, notifier Notifier, cfg ServiceConfig) *Service {
	s := &Service{
		store:     store,
		tokens:    tokens,
		notifier:  notifier,
		hasher:    cfg.Hasher,
		now:       cfg.Clock,
		resetTTL:  cfg.ResetTokenTTL,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		log:       cfg.Logger,
	}
	if s.hasher == nil {
		s.hasher = NewBcryptHasher(0)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.resetTTL <= 0 {
		s.resetTTL = DefaultResetTokenTTL
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ProfileImageURL string
}

type RegisterResult struct {
	Token           string    `json:"token"`
	ExpiresAt       time.Time `json:"expires_at"`
	Email           string    `json:"email"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	Active          bool      `json:"active"`
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	ID        uint      `json:"id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Email     string    `json:"email"`
}

type ChangePasswordInput struct {
	Email           string
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}

type MessageResult struct {
	Message string `json:"message"`
}

// VerifyOutcome records why an email verification did or did not activate an account.
type VerifyOutcome int

const (
	VerifyInvalidToken VerifyOutcome = iota
	VerifyExpiredToken
	VerifyWrongPurpose
	VerifyActivated
	// VerifyFailed accompanies a non-nil error; the error carries the reason.
	VerifyFailed
)

func (o VerifyOutcome) String() string {
	switch o {
	case VerifyActivated:
		return "activated"
	case VerifyExpiredToken:
		return "expired_token"
	case VerifyWrongPurpose:
		return "wrong_purpose"
	case VerifyFailed:
		return "failed"
	default:
		return "invalid_token"
	}
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	_, err := s.store.Users().FindByEmail(ctx, input.Email)
	switch {
	case err == nil:
		return nil, ErrEmailAlreadyTaken
	case !errors.Is(err, ErrNotFound):
		return nil, infraErr("finding user", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := models.User{
		Email:           input.Email,
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		PasswordHash:    hash,
		ProfileImageURL: input.ProfileImageURL,
		Active:          false,
	}
	if err := s.store.Users().Create(ctx, &user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrEmailAlreadyTaken
		}
		return nil, infraErr("creating user", err)
	}

	s.log.Info("user registered", "user_id", user.ID)

	if err := s.sendVerification(ctx, user.Email); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.IssueSession(user.Email, false)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	return &RegisterResult{
		Token:           token,
		ExpiresAt:       expiresAt,
		Email:           user.Email,
		ProfileImageURL: user.ProfileImageURL,
		Active:          user.Active,
	}, nil
}

// Login checks existence, then verification, then the password.
func (s *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.findUser(ctx, s.store, input.Email)
	if err != nil {
		return nil, err
	}

	if !user.Active {
		return nil, ErrUserNotVerified
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.IssueSession(user.Email, true)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	return &LoginResult{
		ID:        user.ID,
		Token:     token,
		ExpiresAt: expiresAt,
		Email:     user.Email,
	}, nil
}

// VerifyEmail activates the account named by a verification token. A bad
// token is reported through the outcome, not as an error.
func (s *Service) VerifyEmail(ctx context.Context, token string) (VerifyOutcome, error) {
	claims, err := s.tokens.ValidateToken(token)
	switch {
	case errors.Is(err, ErrExpiredToken):
		return VerifyExpiredToken, nil
	case err != nil:
		return VerifyInvalidToken, nil
	case claims.Purpose() != PurposeEmailVerification:
		return VerifyWrongPurpose, nil
	}

	err = s.store.WithinTx(ctx, func(tx Store) error {
		user, err := s.findUser(ctx, tx, claims.Subject)
		if err != nil {
			return err
		}
		if user.Active {
			return ErrUserAlreadyActive
		}

		n, err := tx.Users().Activate(ctx, user.Email)
		if err != nil {
			return infraErr("activating user", err)
		}
		if n == 0 {
			return ErrUserAlreadyActive
		}
		return nil
	})
	if err != nil {
		return VerifyFailed, err
	}

	s.log.Info("email verified", "email", claims.Subject)
	return VerifyActivated, nil
}

func (s *Service) VerifyEmailToken(ctx context.Context, token string) (bool, error) {
	outcome, err := s.VerifyEmail(ctx, token)
	if err != nil {
		return false, err
	}
	if outcome != VerifyActivated {
		s.log.Debug("email verification rejected", "reason", outcome.String())
	}
	return outcome == VerifyActivated, nil
}

// ResendVerificationEmail sends a fresh link only to registered, inactive users.
func (s *Service) ResendVerificationEmail(ctx context.Context, email string) (bool, error) {
	user, err := s.findUser(ctx, s.store, email)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if user.Active {
		return false, nil
	}

	if err := s.sendVerification(ctx, user.Email); err != nil {
		return false, err
	}
	return true, nil
}

// ForgotPassword stores a reset token and mails the link. Unknown emails get
// the same answer without any side effect.
func (s *Service) ForgotPassword(ctx context.Context, email string) (*MessageResult, error) {
	result := &MessageResult{Message: MsgResetEmailSent}

	if _, err := s.findUser(ctx, s.store, email); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.log.Debug("password reset requested for unknown email")
			return result, nil
		}
		return nil, err
	}

	rt := models.ResetToken{
		Token:     uuid.NewString(),
		UserEmail: email,
		ExpiresAt: s.now().Add(s.resetTTL),
	}
	if err := s.store.ResetTokens().Save(ctx, &rt); err != nil {
		return nil, infraErr("saving reset token", err)
	}

	link := s.publicURL + "/reset-password/" + url.PathEscape(rt.Token)
	if err := s.notifier.SendForgotPasswordEmail(ctx, email, link); err != nil {
		return nil, infraErr("sending reset email", err)
	}

	return result, nil
}

// ResetPassword consumes a reset token. The lookup, password write and token
// delete share one transaction and the delete must remove exactly one row, so
// a token can be redeemed once even under concurrent submits. The password is
// hashed only after the token has been found and checked for expiry.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) (*MessageResult, error) {
	err := s.store.WithinTx(ctx, func(tx Store) error {
		rt, err := tx.ResetTokens().FindByToken(ctx, token)
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidToken
		}
		if err != nil {
			return infraErr("finding reset token", err)
		}

		if rt.IsExpired(s.now()) {
			return ErrExpiredToken
		}

		user, err := s.findUser(ctx, tx, rt.UserEmail)
		if err != nil {
			return err
		}

		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}

		user.PasswordHash = hash
		if err := tx.Users().Save(ctx, user); err != nil {
			return infraErr("saving user", err)
		}

		n, err := tx.ResetTokens().Delete(ctx, rt)
		if err != nil {
			return infraErr("deleting reset token", err)
		}
		if n != 1 {
			return ErrInvalidToken
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &MessageResult{Message: MsgPasswordReset}, nil
}

func (s *Service) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.findUser(ctx, s.store, input.Email)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(input.OldPassword, user.PasswordHash) {
		return ErrInvalidOldPassword
	}

	if input.NewPassword != input.ConfirmPassword {
		return ErrPasswordsDoNotMatch
	}

	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user.PasswordHash = hash
	if err := s.store.Users().Save(ctx, user); err != nil {
		return infraErr("saving user", err)
	}
	return nil
}

func (s *Service) sendVerification(ctx context.Context, email string) error {
	token, err := s.tokens.IssueVerification(email)
	if err != nil {
		return fmt.Errorf("issuing verification token: %w", err)
	}

	link := s.publicURL + "/api/auth/verify-email?token=" + url.QueryEscape(token)
	if err := s.notifier.SendVerificationEmail(ctx, email, link); err != nil {
		return infraErr("sending verification email", err)
	}
	return nil
}

func (s *Service) findUser(ctx context.Context, st Store, email string) (*models.User, error) {
	user, err := st.Users().FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, infraErr("finding user", err)
	}
	return user, nil
}

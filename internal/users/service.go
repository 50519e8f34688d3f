// Package users manages user profiles once an account exists.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hugh/secretstuffs/internal/auth"
	"github.com/hugh/secretstuffs/internal/database/models"
)

type Service struct {
	store auth.Store
	log   *slog.Logger
}

func NewService(store auth.Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

type UpdateInput struct {
	FirstName       string
	LastName        string
	ProfileImageURL string
}

func (s *Service) Get(ctx context.Context, email string) (*models.User, error) {
	user, err := s.store.Users().FindByEmail(ctx, email)
	if errors.Is(err, auth.ErrNotFound) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: finding user: %w", auth.ErrInfrastructure, err)
	}
	return user, nil
}

func (s *Service) List(ctx context.Context, page, perPage int) ([]models.User, int64, error) {
	users, total, err := s.store.Users().List(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: listing users: %w", auth.ErrInfrastructure, err)
	}
	return users, total, nil
}

// Update replaces the editable profile fields.
func (s *Service) Update(ctx context.Context, email string, input UpdateInput) (*models.User, error) {
	user, err := s.Get(ctx, email)
	if err != nil {
		return nil, err
	}

	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.ProfileImageURL = input.ProfileImageURL

	if err := s.store.Users().Save(ctx, user); err != nil {
		return nil, fmt.Errorf("%w: saving user: %w", auth.ErrInfrastructure, err)
	}
	return user, nil
}

// Delete removes the account and any reset tokens still pointing at it.
func (s *Service) Delete(ctx context.Context, email string) error {
	err := s.store.WithinTx(ctx, func(tx auth.Store) error {
		user, err := tx.Users().FindByEmail(ctx, email)
		if errors.Is(err, auth.ErrNotFound) {
			return auth.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: finding user: %w", auth.ErrInfrastructure, err)
		}

		if _, err := tx.ResetTokens().DeleteForEmail(ctx, email); err != nil {
			return fmt.Errorf("%w: deleting reset tokens: %w", auth.ErrInfrastructure, err)
		}
		if err := tx.Users().Delete(ctx, user); err != nil {
			return fmt.Errorf("%w: deleting user: %w", auth.ErrInfrastructure, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("user deleted", "email", email)
	return nil
}

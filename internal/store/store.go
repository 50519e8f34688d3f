// Package store implements the account repositories on top of gorm.
package store

import (
	"context"
	"errors"

	"github.com/hugh/secretstuffs/internal/auth"
	"gorm.io/gorm"
)

// Store is bound to either the root connection or an open transaction.
type Store struct {
	db          *gorm.DB
	users       *UserRepository
	resetTokens *ResetTokenRepository
}

func New(db *gorm.DB) *Store {
	return &Store{
		db:          db,
		users:       &UserRepository{db: db},
		resetTokens: &ResetTokenRepository{db: db},
	}
}

func (s *Store) Users() auth.UserRepository {
	return s.users
}

func (s *Store) ResetTokens() auth.ResetTokenRepository {
	return s.resetTokens
}

// WithinTx runs fn in a transaction. Every repository reached through tx uses
// the same transaction; fn returning an error rolls it back.
func (s *Store) WithinTx(ctx context.Context, fn func(tx auth.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return auth.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return auth.ErrDuplicate
	default:
		return err
	}
}

var _ auth.Store = (*Store)(nil)

package store

import (
	"context"
	"time"

	"github.com/hugh/secretstuffs/internal/auth"
	"github.com/hugh/secretstuffs/internal/database/models"
	"gorm.io/gorm"
)

type ResetTokenRepository struct {
	db *gorm.DB
}

func (r *ResetTokenRepository) Save(ctx context.Context, token *models.ResetToken) error {
	return translate(r.db.WithContext(ctx).Create(token).Error)
}

func (r *ResetTokenRepository) FindByToken(ctx context.Context, token string) (*models.ResetToken, error) {
	var rt models.ResetToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&rt).Error; err != nil {
		return nil, translate(err)
	}
	return &rt, nil
}

// Delete removes the row by token value and reports how many rows went away.
func (r *ResetTokenRepository) Delete(ctx context.Context, token *models.ResetToken) (int64, error) {
	result := r.db.WithContext(ctx).Where("token = ?", token.Token).Delete(&models.ResetToken{})
	return result.RowsAffected, result.Error
}

func (r *ResetTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.ResetToken{})
	return result.RowsAffected, result.Error
}

func (r *ResetTokenRepository) DeleteForEmail(ctx context.Context, email string) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_email = ?", email).Delete(&models.ResetToken{})
	return result.RowsAffected, result.Error
}

var _ auth.ResetTokenRepository = (*ResetTokenRepository)(nil)

package models

import "time"

// ResetToken is a single-use password reset token. Rows are never updated in place.
type ResetToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	UserEmail string    `gorm:"column:user_email;index;not null" json:"user_email"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (ResetToken) TableName() string {
	return "reset_tokens"
}

// IsExpired reports whether the token is past its expiry at now.
func (t *ResetToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

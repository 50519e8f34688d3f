package models

type User struct {
	Base
	Email           string `gorm:"uniqueIndex;not null" json:"email"`
	FirstName       string `gorm:"not null" json:"first_name"`
	LastName        string `gorm:"not null" json:"last_name"`
	PasswordHash    string `gorm:"column:password;not null" json:"-"`
	ProfileImageURL string `gorm:"column:profile_image_url" json:"profile_image_url,omitempty"`
	Active          bool   `gorm:"not null;default:false" json:"active"`
}

func (User) TableName() string {
	return "users"
}

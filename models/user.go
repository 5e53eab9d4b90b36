package models

import "time"

// User is the account identity. Each user owns exactly one Profile.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"uniqueIndex;size:255;not null"`
	PwHash    string `gorm:"column:pw_hash;not null" json:"-"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the table name used by User to `users`
func (User) TableName() string {
	return "users"
}

package models

import "time"

const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// AuthToken stores the sha256 of an issued bearer token, never the token itself.
type AuthToken struct {
	ID            uint       `gorm:"primaryKey"`
	UserID        uint       `gorm:"not null;index"`
	User          *User      `gorm:"constraint:OnDelete:CASCADE"`
	Kind          string     `gorm:"size:16;not null"`
	TokenHash     string     `gorm:"size:64;not null;uniqueIndex"`
	ExpiresAt     time.Time  `gorm:"not null;index"`
	BlacklistedAt *time.Time `gorm:"index"`
	CreatedAt     time.Time
}

func (AuthToken) TableName() string {
	return "auth_tokens"
}

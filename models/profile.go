package models

import "time"

// Profile is the social side of a User.
type Profile struct {
	ID           uint       `gorm:"primaryKey"`
	UserID       uint       `gorm:"uniqueIndex;not null"`
	User         *User      `gorm:"constraint:OnDelete:CASCADE"`
	Username     string     `gorm:"size:50;not null;index"`
	FirstName    string     `gorm:"size:50;not null"`
	LastName     string     `gorm:"size:50;not null"`
	Bio          *string    `gorm:"type:text"`
	BirthDate    *time.Time `gorm:"type:date"`
	PhoneNumber  *string    `gorm:"size:50"`
	ProfileImage *string    `gorm:"size:255"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Filled by annotated queries only.
	FollowersCount int64 `gorm:"->;-:migration"`
	FollowingCount int64 `gorm:"->;-:migration"`
	FollowedByMe   bool  `gorm:"->;-:migration"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}

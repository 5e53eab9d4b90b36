package models

import "time"

// Like is unique per (ProfileID, PostID).
type Like struct {
	ID        uint      `gorm:"primaryKey"`
	ProfileID uint      `gorm:"not null;uniqueIndex:idx_like_pair"`
	Profile   *Profile  `gorm:"constraint:OnDelete:CASCADE"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_pair;index"`
	LikedAt   time.Time `gorm:"autoCreateTime;index"`
}

func (Like) TableName() string {
	return "likes"
}

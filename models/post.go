package models

import "time"

// Post represents a post in the system
type Post struct {
	ID        uint      `gorm:"primaryKey"`
	AuthorID  uint      `gorm:"not null;index"`
	Author    *Profile  `gorm:"constraint:OnDelete:CASCADE"`
	Content   string    `gorm:"type:text;not null"`
	Image     *string   `gorm:"size:255"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	// ScheduledJobID is set on posts published by the scheduler so a job
	// that runs twice still creates one post.
	ScheduledJobID *uint `gorm:"uniqueIndex"`

	Comments []Comment `gorm:"constraint:OnDelete:CASCADE"`
	Likes    []Like    `gorm:"constraint:OnDelete:CASCADE"`

	LikesCount    int64 `gorm:"->;-:migration"`
	CommentsCount int64 `gorm:"->;-:migration"`
	LikedByUser   bool  `gorm:"->;-:migration"`
}

// TableName overrides the table name used by GORM
func (Post) TableName() string {
	return "posts"
}

// GetAuthorID implements policy.Authored.
func (p *Post) GetAuthorID() uint { return p.AuthorID }

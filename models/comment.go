package models

import "time"

type Comment struct {
	ID          uint      `gorm:"primaryKey"`
	AuthorID    uint      `gorm:"not null;index"`
	Author      *Profile  `gorm:"constraint:OnDelete:CASCADE"`
	PostID      uint      `gorm:"not null;index"`
	Content     string    `gorm:"type:text;not null"`
	CommentedAt time.Time `gorm:"autoCreateTime;index"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) GetAuthorID() uint { return c.AuthorID }

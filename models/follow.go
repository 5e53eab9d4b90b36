package models

import "time"

// Follow is a directed edge: Follower follows Following.
type Follow struct {
	ID          uint      `gorm:"primaryKey"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_follow_pair;check:chk_follow_not_self,follower_id <> following_id"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_follow_pair;index"`
	Follower    *Profile  `gorm:"constraint:OnDelete:CASCADE"`
	Following   *Profile  `gorm:"constraint:OnDelete:CASCADE"`
	FollowedAt  time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the table name used by GORM
func (Follow) TableName() string {
	return "follows"
}

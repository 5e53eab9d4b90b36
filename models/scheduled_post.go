package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

// ScheduledPostJob is a row of the delayed job queue. The scheduler reads and
// writes it through sqlx, hence the db tags.
type ScheduledPostJob struct {
	ID        uint           `gorm:"primaryKey" db:"id"`
	Kind      string         `gorm:"size:64;not null" db:"kind"`
	Payload   datatypes.JSON `gorm:"not null" db:"payload"`
	RunAt     time.Time      `gorm:"not null;index:idx_scheduled_due" db:"run_at"`
	Status    string         `gorm:"size:16;not null;default:'pending';index:idx_scheduled_due" db:"status"`
	Attempts  int            `gorm:"not null;default:0" db:"attempts"`
	LastError *string        `gorm:"type:text" db:"last_error"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (ScheduledPostJob) TableName() string {
	return "scheduled_posts"
}

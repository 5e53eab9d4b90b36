// Package scheduler is a durable delayed-job queue kept in the scheduled_posts
// table and drained by a polling worker pool.
package scheduler

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"gorm.io/datatypes"

	"github.com/olenaliuby/social-media-api/database"
	"github.com/olenaliuby/social-media-api/models"
	"github.com/olenaliuby/social-media-api/monitoring"
)

const jobColumns = "id, kind, payload, run_at, status, attempts, last_error, created_at, updated_at"

// Store reads and writes jobs with plain SQL over the application's pool.
type Store struct {
	db *sqlx.DB
}

// NewStore shares the gorm connection pool of db.
func NewStore(db *database.DB) (*Store, error) {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, errors.Wrap(err, "scheduler: get sql pool")
	}
	return &Store{db: sqlx.NewDb(sqlDB, driverName(db.Driver))}, nil
}

// driverName picks the sqlx bindvar family for the gorm dialect.
func driverName(driver string) string {
	if driver == database.DriverSQLite {
		return "sqlite3"
	}
	return "postgres"
}

// Enqueue stores payload as a pending job due at runAt.
func (s *Store) Enqueue(ctx context.Context, kind string, payload any, runAt time.Time) (uint, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, errors.Wrap(err, "scheduler: encode payload")
	}
	now := time.Now().UTC()
	var id uint
	err = s.db.QueryRowxContext(ctx, s.db.Rebind(
		`INSERT INTO scheduled_posts (kind, payload, run_at, status, attempts, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?) RETURNING id`),
		kind, datatypes.JSON(raw), runAt.UTC(), models.JobStatusPending, now, now,
	).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "scheduler: insert job")
	}
	monitoring.JobsEnqueued.WithLabelValues(kind).Inc()
	return id, nil
}

// Get returns a job by id.
func (s *Store) Get(ctx context.Context, id uint) (*models.ScheduledPostJob, error) {
	var job models.ScheduledPostJob
	err := s.db.GetContext(ctx, &job, s.db.Rebind("SELECT "+jobColumns+" FROM scheduled_posts WHERE id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Errorf("scheduler: job %d not found", id)
		}
		return nil, errors.Wrap(err, "scheduler: get job")
	}
	return &job, nil
}

// ClaimDue moves up to limit due pending jobs to running and returns them.
// A job is claimed by exactly one caller: the pending -> running update is
// conditional, so a competing worker's update affects no rows.
func (s *Store) ClaimDue(ctx context.Context, now time.Time, limit int) ([]models.ScheduledPostJob, error) {
	var ids []uint
	err := s.db.SelectContext(ctx, &ids, s.db.Rebind(
		`SELECT id FROM scheduled_posts WHERE status = ? AND run_at <= ? ORDER BY run_at, id LIMIT ?`),
		models.JobStatusPending, now.UTC(), limit)
	if err != nil {
		return nil, errors.Wrap(err, "scheduler: select due jobs")
	}

	claimed := make([]models.ScheduledPostJob, 0, len(ids))
	for _, id := range ids {
		res, err := s.db.ExecContext(ctx, s.db.Rebind(
			`UPDATE scheduled_posts SET status = ?, attempts = attempts + 1, updated_at = ?
			 WHERE id = ? AND status = ?`),
			models.JobStatusRunning, time.Now().UTC(), id, models.JobStatusPending)
		if err != nil {
			return claimed, errors.Wrapf(err, "scheduler: claim job %d", id)
		}
		if n, _ := res.RowsAffected(); n != 1 {
			continue
		}
		job, err := s.Get(ctx, id)
		if err != nil {
			return claimed, err
		}
		claimed = append(claimed, *job)
	}
	return claimed, nil
}

func (s *Store) MarkDone(ctx context.Context, id uint) error {
	return s.setStatus(ctx, id, models.JobStatusDone, nil, nil)
}

// Retry puts a running job back in the queue at runAt.
func (s *Store) Retry(ctx context.Context, id uint, runAt time.Time, reason string) error {
	return s.setStatus(ctx, id, models.JobStatusPending, &runAt, &reason)
}

func (s *Store) MarkFailed(ctx context.Context, id uint, reason string) error {
	return s.setStatus(ctx, id, models.JobStatusFailed, nil, &reason)
}

// RequeueStale returns jobs left running since before cutoff to pending,
// e.g. after a worker crashed mid-job.
func (s *Store) RequeueStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(
		`UPDATE scheduled_posts SET status = ?, updated_at = ? WHERE status = ? AND updated_at < ?`),
		models.JobStatusPending, time.Now().UTC(), models.JobStatusRunning, cutoff.UTC())
	if err != nil {
		return 0, errors.Wrap(err, "scheduler: requeue stale jobs")
	}
	return res.RowsAffected()
}

func (s *Store) setStatus(ctx context.Context, id uint, status string, runAt *time.Time, reason *string) error {
	query := "UPDATE scheduled_posts SET status = ?, last_error = ?, updated_at = ?"
	args := []any{status, reason, time.Now().UTC()}
	if runAt != nil {
		query += ", run_at = ?"
		args = append(args, runAt.UTC())
	}
	query += " WHERE id = ?"
	args = append(args, id)

	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...); err != nil {
		return errors.Wrapf(err, "scheduler: set job %d %s", id, status)
	}
	return nil
}

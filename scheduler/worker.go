package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/olenaliuby/social-media-api/models"
	"github.com/olenaliuby/social-media-api/monitoring"
)

// Handler executes one job. Returning an error retries the job unless it
// was wrapped with Permanent.
type Handler func(ctx context.Context, payload []byte) error

type jobIDKey struct{}

// JobID returns the id of the job a Handler is running for.
func JobID(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(jobIDKey{}).(uint)
	return id, ok
}

// WithJobID attaches a job id to ctx the way the worker does before calling
// a Handler.
func WithJobID(ctx context.Context, id uint) context.Context {
	return context.WithValue(ctx, jobIDKey{}, id)
}

type permanentError struct{ err error }

func (p permanentError) Error() string { return p.err.Error() }
func (p permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

func isPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

type Options struct {
	PollInterval time.Duration
	Concurrency  int
	MaxAttempts  int
	BatchSize    int
	// StaleAfter is how long a job may stay running before it is requeued.
	StaleAfter time.Duration
}

type Worker struct {
	store    *Store
	opts     Options
	handlers map[string]Handler
	now      func() time.Time
}

func NewWorker(store *Store, opts Options) *Worker {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = opts.Concurrency * 8
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 10 * time.Minute
	}
	return &Worker{
		store:    store,
		opts:     opts,
		handlers: map[string]Handler{},
		now:      time.Now,
	}
}

// Handle registers the handler for a job kind.
func (w *Worker) Handle(kind string, h Handler) {
	w.handlers[kind] = h
}

// SetClock replaces the worker's time source.
func (w *Worker) SetClock(now func() time.Time) {
	w.now = now
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if n, err := w.store.RequeueStale(ctx, w.now().Add(-w.opts.StaleAfter)); err != nil {
		logrus.WithError(err).Warn("Could not requeue stale jobs")
	} else if n > 0 {
		logrus.WithField("count", n).Info("Requeued stale jobs")
	}

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	logrus.WithFields(logrus.Fields{
		"interval":    w.opts.PollInterval.String(),
		"concurrency": w.opts.Concurrency,
	}).Info("Scheduler worker started")

	for {
		if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
			logrus.WithError(err).Error("Scheduler poll failed")
		}
		select {
		case <-ctx.Done():
			logrus.Info("Scheduler worker stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce claims every due job and runs them to completion. It returns the
// number of jobs processed.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	jobs, err := w.store.ClaimDue(ctx, w.now(), w.opts.BatchSize)
	if err != nil && len(jobs) == 0 {
		return 0, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.opts.Concurrency)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			return w.process(gctx, job)
		})
	}
	if werr := g.Wait(); werr != nil {
		return len(jobs), werr
	}
	return len(jobs), err
}

// process only returns an error when the queue itself could not be updated;
// handler failures are recorded on the job.
func (w *Worker) process(ctx context.Context, job models.ScheduledPostJob) error {
	log := logrus.WithFields(logrus.Fields{
		"job_id":  job.ID,
		"kind":    job.Kind,
		"attempt": job.Attempts,
	})

	herr := w.execute(ctx, job)
	if herr == nil {
		monitoring.JobsFinished.WithLabelValues(job.Kind, "done").Inc()
		log.Info("Job done")
		return w.store.MarkDone(ctx, job.ID)
	}

	if isPermanent(herr) || job.Attempts >= w.opts.MaxAttempts {
		monitoring.JobsFinished.WithLabelValues(job.Kind, "failed").Inc()
		log.WithError(herr).Error("Job failed")
		return w.store.MarkFailed(ctx, job.ID, herr.Error())
	}

	next := w.now().Add(Backoff(job.Attempts))
	monitoring.JobsFinished.WithLabelValues(job.Kind, "retry").Inc()
	log.WithError(herr).WithField("run_at", next).Warn("Job will be retried")
	return w.store.Retry(ctx, job.ID, next, herr.Error())
}

func (w *Worker) execute(ctx context.Context, job models.ScheduledPostJob) (err error) {
	handler, ok := w.handlers[job.Kind]
	if !ok {
		return Permanent(errors.Errorf("no handler for job kind %q", job.Kind))
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.WithStack(fmt.Errorf("handler panic: %v", r))
		}
	}()
	return errors.Wrapf(handler(WithJobID(ctx, job.ID), job.Payload), "job %d", job.ID)
}

// Backoff is the delay before retry n (1-based): 30s, 60s, 120s, ...
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 10 {
		attempt = 10
	}
	return 30 * time.Second << (attempt - 1)
}

package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/olenaliuby/social-media-api/logger"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	LoginSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "login_success_total",
		Help: "Total successful token issues",
	})

	LoginFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_failure_total",
		Help: "Total failed token issues",
	}, []string{"reason"})

	RegisterSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "register_success_total",
		Help: "Total accounts registered",
	})

	PostsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "posts_created_total",
		Help: "Total posts written, by path (direct or scheduled)",
	}, []string{"path"})

	FollowChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "follow_changes_total",
		Help: "Total follow and unfollow operations",
	}, []string{"op"})

	LikeChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "like_changes_total",
		Help: "Total like and unlike operations",
	}, []string{"op"})

	CommentsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "comments_created_total",
		Help: "Total comments written",
	})

	JobsEnqueued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_jobs_enqueued_total",
		Help: "Deferred jobs accepted",
	}, []string{"kind"})

	JobsFinished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_jobs_finished_total",
		Help: "Deferred jobs by kind and outcome (done, retry, failed)",
	}, []string{"kind", "outcome"})
)

func init() {
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(LoginSuccess)
	prometheus.MustRegister(LoginFailure)
	prometheus.MustRegister(RegisterSuccess)
	prometheus.MustRegister(PostsCreated)
	prometheus.MustRegister(FollowChanges)
	prometheus.MustRegister(LikeChanges)
	prometheus.MustRegister(CommentsCreated)
	prometheus.MustRegister(JobsEnqueued)
	prometheus.MustRegister(JobsFinished)
}

// Middleware to track request timing and status code
type statusRecordingWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecordingWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// InstrumentHandler labels by route template so /posts/{id}/ stays one series.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &statusRecordingWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		RequestDuration.WithLabelValues(r.Method, logger.RouteName(r), strconv.Itoa(rw.statusCode)).
			Observe(time.Since(start).Seconds())
	})
}

package logger

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// InitLogger configures the global logrus logger. An unwritable logFile falls
// back to stdout.
func InitLogger(level, logFile string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.SetOutput(os.Stdout)
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			logrus.Warnf("Failed to open log file (%s), using stdout: %v", logFile, err)
		} else {
			logrus.SetOutput(f)
		}
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("Unknown log level %q, using info", level)
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)

	logrus.Info("Logger initialized")
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware writes one access log entry per request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		entry := logrus.WithFields(logrus.Fields{
			"method":      r.Method,
			"route":       RouteName(r),
			"status":      sw.status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		switch {
		case sw.status >= 500:
			entry.Error("request failed")
		case sw.status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	})
}

// RouteName returns the mux path template of the matched route, or the raw
// path when no route matched.
func RouteName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

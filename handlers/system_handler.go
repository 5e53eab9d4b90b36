package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/olenaliuby/social-media-api/httpx"
)

// Pinger is satisfied by the database handle.
type Pinger interface {
	Ping() error
}

// SystemHandler handles system-related endpoints
type SystemHandler struct {
	DB Pinger
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger) *SystemHandler {
	return &SystemHandler{DB: db}
}

// Health reports whether the database answers.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- h.DB.Ping() }()

	select {
	case err := <-errc:
		if err != nil {
			logrus.WithError(err).Error("Health check failed")
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case <-ctx.Done():
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "timeout"})
	}
}

// Package services holds the business operations behind the HTTP handlers.
// Every operation takes the authenticated user id and resolves the caller's
// profile itself.
package services

import (
	"context"
	"io"
	"time"

	"github.com/olenaliuby/social-media-api/apperr"
	"github.com/olenaliuby/social-media-api/models"
	"github.com/olenaliuby/social-media-api/repositories"
)

// Dispatcher hands a job to the deferred execution facility.
type Dispatcher interface {
	Enqueue(ctx context.Context, kind string, payload any, runAt time.Time) (uint, error)
}

// MediaStore persists uploaded files under a key.
type MediaStore interface {
	Save(ctx context.Context, key string, body io.Reader) error
}

// Upload is a file received from a client.
type Upload struct {
	Filename string
	Body     io.Reader
}

func (u *Upload) empty() bool {
	return u == nil || u.Filename == "" || u.Body == nil
}

func callerProfile(ctx context.Context, profiles repositories.ProfileRepository, userID uint) (*models.Profile, error) {
	if userID == 0 {
		return nil, apperr.Unauthenticated("Authentication credentials were not provided.")
	}
	return profiles.FindByUserID(ctx, userID)
}

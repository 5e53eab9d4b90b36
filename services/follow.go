package services

import (
	"context"

	"github.com/olenaliuby/social-media-api/apperr"
	"github.com/olenaliuby/social-media-api/models"
	"github.com/olenaliuby/social-media-api/monitoring"
	"github.com/olenaliuby/social-media-api/repositories"
)

// FollowService owns the follow-graph toggles. The unique (follower,
// following) index is authoritative; Exists is only an early exit.
type FollowService struct {
	profiles repositories.ProfileRepository
	follows  repositories.FollowRepository
}

func NewFollowService(profiles repositories.ProfileRepository, follows repositories.FollowRepository) *FollowService {
	return &FollowService{profiles: profiles, follows: follows}
}

func (s *FollowService) Follow(ctx context.Context, userID, targetID uint) error {
	follower, target, err := s.endpoints(ctx, userID, targetID)
	if err != nil {
		return err
	}
	if follower.ID == target.ID {
		return apperr.InvalidOperation("You cannot follow yourself.")
	}

	exists, err := s.follows.Exists(ctx, follower.ID, target.ID)
	if err != nil {
		return err
	}
	if exists {
		return apperr.Conflict("You are already following this user.")
	}
	if err := s.follows.Create(ctx, &models.Follow{FollowerID: follower.ID, FollowingID: target.ID}); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return apperr.Conflict("You are already following this user.")
		}
		return err
	}
	monitoring.FollowChanges.WithLabelValues("follow").Inc()
	return nil
}

func (s *FollowService) Unfollow(ctx context.Context, userID, targetID uint) error {
	follower, target, err := s.endpoints(ctx, userID, targetID)
	if err != nil {
		return err
	}
	removed, err := s.follows.Delete(ctx, follower.ID, target.ID)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.NotFound("You are not following this user.")
	}
	monitoring.FollowChanges.WithLabelValues("unfollow").Inc()
	return nil
}

// Followers lists the edges pointing at the caller.
func (s *FollowService) Followers(ctx context.Context, userID uint) ([]models.Follow, error) {
	me, err := callerProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	return s.profiles.Followers(ctx, me.ID)
}

// Following lists the edges leaving the caller.
func (s *FollowService) Following(ctx context.Context, userID uint) ([]models.Follow, error) {
	me, err := callerProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	return s.profiles.Following(ctx, me.ID)
}

func (s *FollowService) endpoints(ctx context.Context, userID, targetID uint) (*models.Profile, *models.Profile, error) {
	follower, err := callerProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, nil, err
	}
	target, err := s.profiles.FindByID(ctx, targetID, follower.ID)
	if err != nil {
		return nil, nil, err
	}
	return follower, target, nil
}

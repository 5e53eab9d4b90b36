package services

import (
	"context"

	"github.com/olenaliuby/social-media-api/models"
	"github.com/olenaliuby/social-media-api/repositories"
)

// MyPosts lists posts authored by the caller.
func (s *PostService) MyPosts(ctx context.Context, userID uint) ([]models.Post, error) {
	return s.feed(ctx, userID, func(q *repositories.PostQuery, me uint) { q.AuthorID = me })
}

// Feed lists posts by the profiles the caller follows.
func (s *PostService) Feed(ctx context.Context, userID uint) ([]models.Post, error) {
	return s.feed(ctx, userID, func(q *repositories.PostQuery, me uint) { q.FollowedBy = me })
}

// Liked lists posts the caller liked.
func (s *PostService) Liked(ctx context.Context, userID uint) ([]models.Post, error) {
	return s.feed(ctx, userID, func(q *repositories.PostQuery, me uint) { q.LikedBy = me })
}

func (s *PostService) feed(ctx context.Context, userID uint, scope func(*repositories.PostQuery, uint)) ([]models.Post, error) {
	me, err := callerProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	q := repositories.PostQuery{ViewerID: me.ID}
	scope(&q, me.ID)
	return s.posts.List(ctx, q)
}

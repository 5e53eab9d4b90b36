package services

import (
	"context"

	"github.com/olenaliuby/social-media-api/apperr"
	"github.com/olenaliuby/social-media-api/models"
	"github.com/olenaliuby/social-media-api/monitoring"
	"github.com/olenaliuby/social-media-api/policy"
	"github.com/olenaliuby/social-media-api/repositories"
	"github.com/olenaliuby/social-media-api/validation"
)

// CommentService manages comments nested under a post. Writes follow the
// same author-or-read-only rule as posts.
type CommentService struct {
	profiles repositories.ProfileRepository
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	policy   policy.Policy
}

func NewCommentService(profiles repositories.ProfileRepository, posts repositories.PostRepository, comments repositories.CommentRepository) *CommentService {
	return &CommentService{
		profiles: profiles,
		posts:    posts,
		comments: comments,
		policy:   policy.NewAuthorOrReadOnly(),
	}
}

func (s *CommentService) List(ctx context.Context, userID, postID uint) ([]models.Comment, error) {
	if _, err := s.post(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID)
}

func (s *CommentService) Create(ctx context.Context, userID, postID uint, content string) (*models.Comment, error) {
	me, err := s.post(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	v := validation.Violations{}
	validation.Required("content", content, v)
	if !v.Empty() {
		return nil, apperr.Validation(v)
	}

	comment := &models.Comment{AuthorID: me.ID, PostID: postID, Content: content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	monitoring.CommentsCreated.Inc()
	return s.comments.FindByID(ctx, postID, comment.ID)
}

func (s *CommentService) Get(ctx context.Context, userID, postID, id uint) (*models.Comment, error) {
	if _, err := s.post(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.comments.FindByID(ctx, postID, id)
}

func (s *CommentService) Update(ctx context.Context, userID, postID, id uint, content *string) (*models.Comment, error) {
	comment, err := s.authorized(ctx, userID, postID, id, policy.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if content != nil {
		v := validation.Violations{}
		validation.Required("content", *content, v)
		if !v.Empty() {
			return nil, apperr.Validation(v)
		}
		comment.Content = *content
		if err := s.comments.Update(ctx, comment); err != nil {
			return nil, err
		}
	}
	return s.comments.FindByID(ctx, postID, id)
}

func (s *CommentService) Delete(ctx context.Context, userID, postID, id uint) error {
	if _, err := s.authorized(ctx, userID, postID, id, policy.ActionDelete); err != nil {
		return err
	}
	return s.comments.Delete(ctx, id)
}

// post resolves the caller and checks the parent post exists.
func (s *CommentService) post(ctx context.Context, userID, postID uint) (*models.Profile, error) {
	me, err := callerProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.posts.FindByID(ctx, postID, me.ID); err != nil {
		return nil, err
	}
	return me, nil
}

func (s *CommentService) authorized(ctx context.Context, userID, postID, id uint, action policy.Action) (*models.Comment, error) {
	me, err := s.post(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	comment, err := s.comments.FindByID(ctx, postID, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.Can(ctx, me.ID, action, comment) {
		return nil, apperr.Forbidden("You do not have permission to perform this action.")
	}
	return comment, nil
}

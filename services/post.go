package services

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/olenaliuby/social-media-api/apperr"
	"github.com/olenaliuby/social-media-api/models"
	"github.com/olenaliuby/social-media-api/monitoring"
	"github.com/olenaliuby/social-media-api/policy"
	"github.com/olenaliuby/social-media-api/repositories"
	"github.com/olenaliuby/social-media-api/scheduler"
	"github.com/olenaliuby/social-media-api/storage"
	"github.com/olenaliuby/social-media-api/validation"
)

// JobCreateScheduledPost is the job kind that materializes a scheduled post.
const JobCreateScheduledPost = "create_scheduled_post"

type PostService struct {
	profiles   repositories.ProfileRepository
	posts      repositories.PostRepository
	likes      repositories.LikeRepository
	dispatcher Dispatcher
	media      MediaStore
	policy     policy.Policy
	now        func() time.Time
}

func NewPostService(
	profiles repositories.ProfileRepository,
	posts repositories.PostRepository,
	likes repositories.LikeRepository,
	dispatcher Dispatcher,
	media MediaStore,
) *PostService {
	return &PostService{
		profiles:   profiles,
		posts:      posts,
		likes:      likes,
		dispatcher: dispatcher,
		media:      media,
		policy:     policy.NewAuthorOrReadOnly(),
		now:        time.Now,
	}
}

type PostInput struct {
	Content     string
	ScheduledAt *time.Time
	Image       *Upload
}

// CreatedPost holds either the written post or, for a deferred create, the
// instant it will be written at.
type CreatedPost struct {
	Post        *models.Post
	ScheduledAt *time.Time
}

// scheduledPost is the job payload. ScheduledAt travels with the fields and
// is dropped by the handler before the insert.
type scheduledPost struct {
	AuthorID    uint       `json:"author_id"`
	Content     string     `json:"content"`
	Image       *string    `json:"image,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

func (s *PostService) Create(ctx context.Context, userID uint, in PostInput) (*CreatedPost, error) {
	author, err := callerProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	if !s.policy.Can(ctx, author.ID, policy.ActionCreate, nil) {
		return nil, apperr.Forbidden("You do not have permission to perform this action.")
	}

	v := validation.Violations{}
	validation.Required("content", in.Content, v)
	if !v.Empty() {
		return nil, apperr.Validation(v)
	}

	var image *string
	if !in.Image.empty() {
		key, err := saveImage(ctx, s.media, storage.PostImages, in.Image, "image")
		if err != nil {
			return nil, err
		}
		image = &key
	}

	if in.ScheduledAt != nil && in.ScheduledAt.After(s.now()) {
		runAt := in.ScheduledAt.UTC()
		payload := scheduledPost{AuthorID: author.ID, Content: in.Content, Image: image, ScheduledAt: &runAt}
		jobID, err := s.dispatcher.Enqueue(ctx, JobCreateScheduledPost, payload, runAt)
		if err != nil {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{
			"job_id":     jobID,
			"profile_id": author.ID,
			"run_at":     runAt,
		}).Info("Post scheduled")
		return &CreatedPost{ScheduledAt: &runAt}, nil
	}

	post := &models.Post{AuthorID: author.ID, Content: in.Content, Image: image}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	monitoring.PostsCreated.WithLabelValues("direct").Inc()
	created, err := s.posts.FindByID(ctx, post.ID, author.ID)
	if err != nil {
		return nil, err
	}
	return &CreatedPost{Post: created}, nil
}

// PublishScheduled is the scheduler handler for JobCreateScheduledPost.
func (s *PostService) PublishScheduled(ctx context.Context, payload []byte) error {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return scheduler.Permanent(err)
	}
	delete(fields, "scheduled_at")

	stripped, err := json.Marshal(fields)
	if err != nil {
		return scheduler.Permanent(err)
	}
	var data scheduledPost
	dec := json.NewDecoder(bytes.NewReader(stripped))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&data); err != nil {
		return scheduler.Permanent(err)
	}

	author, err := s.profiles.FindByID(ctx, data.AuthorID, 0)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return scheduler.Permanent(err)
		}
		return err
	}

	post := &models.Post{AuthorID: author.ID, Content: data.Content, Image: data.Image}
	if jobID, ok := scheduler.JobID(ctx); ok {
		post.ScheduledJobID = &jobID
	}
	if err := s.posts.Create(ctx, post); err != nil {
		if post.ScheduledJobID != nil && apperr.Is(err, apperr.KindConflict) {
			logrus.WithField("job_id", *post.ScheduledJobID).Warn("Scheduled post already published")
			return nil
		}
		return err
	}
	monitoring.PostsCreated.WithLabelValues("scheduled").Inc()
	logrus.WithFields(logrus.Fields{"post_id": post.ID, "profile_id": author.ID}).Info("Scheduled post published")
	return nil
}

// PostFilter holds the list view's case-insensitive substring filters.
type PostFilter struct {
	Content        string
	AuthorUsername string
}

func (s *PostService) List(ctx context.Context, userID uint, filter PostFilter) ([]models.Post, error) {
	me, err := callerProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	return s.posts.List(ctx, repositories.PostQuery{
		ViewerID:       me.ID,
		Content:        filter.Content,
		AuthorUsername: filter.AuthorUsername,
	})
}

func (s *PostService) Get(ctx context.Context, userID, id uint) (*models.Post, error) {
	me, err := callerProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	return s.posts.FindDetail(ctx, id, me.ID)
}

func (s *PostService) Update(ctx context.Context, userID, id uint, content *string) (*models.Post, error) {
	me, post, err := s.authorized(ctx, userID, id, policy.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if content != nil {
		v := validation.Violations{}
		validation.Required("content", *content, v)
		if !v.Empty() {
			return nil, apperr.Validation(v)
		}
		post.Content = *content
		if err := s.posts.Update(ctx, post); err != nil {
			return nil, err
		}
	}
	return s.posts.FindByID(ctx, id, me.ID)
}

func (s *PostService) Delete(ctx context.Context, userID, id uint) error {
	if _, _, err := s.authorized(ctx, userID, id, policy.ActionDelete); err != nil {
		return err
	}
	return s.posts.Delete(ctx, id)
}

// UploadImage replaces the post's image.
func (s *PostService) UploadImage(ctx context.Context, userID, id uint, up *Upload) (*models.Post, error) {
	me, _, err := s.authorized(ctx, userID, id, policy.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if up.empty() {
		return nil, apperr.Validation(map[string]string{"image": "No file was submitted."})
	}
	key, err := saveImage(ctx, s.media, storage.PostImages, up, "image")
	if err != nil {
		return nil, err
	}
	if err := s.posts.SetImage(ctx, id, key); err != nil {
		return nil, err
	}
	return s.posts.FindByID(ctx, id, me.ID)
}

// Like fails with Conflict when the caller already likes the post. A raced
// duplicate is rejected by the unique index and reported the same way.
func (s *PostService) Like(ctx context.Context, userID, id uint) error {
	me, err := callerProfile(ctx, s.profiles, userID)
	if err != nil {
		return err
	}
	if _, err := s.posts.FindByID(ctx, id, me.ID); err != nil {
		return err
	}
	exists, err := s.likes.Exists(ctx, me.ID, id)
	if err != nil {
		return err
	}
	if exists {
		return apperr.Conflict("You have already liked this post.")
	}
	if err := s.likes.Create(ctx, &models.Like{ProfileID: me.ID, PostID: id}); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return apperr.Conflict("You have already liked this post.")
		}
		return err
	}
	monitoring.LikeChanges.WithLabelValues("like").Inc()
	return nil
}

func (s *PostService) Unlike(ctx context.Context, userID, id uint) error {
	me, err := callerProfile(ctx, s.profiles, userID)
	if err != nil {
		return err
	}
	if _, err := s.posts.FindByID(ctx, id, me.ID); err != nil {
		return err
	}
	removed, err := s.likes.Delete(ctx, me.ID, id)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.NotFound("You have not liked this post.")
	}
	monitoring.LikeChanges.WithLabelValues("unlike").Inc()
	return nil
}

func (s *PostService) authorized(ctx context.Context, userID, id uint, action policy.Action) (*models.Profile, *models.Post, error) {
	me, err := callerProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, nil, err
	}
	post, err := s.posts.FindByID(ctx, id, me.ID)
	if err != nil {
		return nil, nil, err
	}
	if !s.policy.Can(ctx, me.ID, action, post) {
		return nil, nil, apperr.Forbidden("You do not have permission to perform this action.")
	}
	return me, post, nil
}

package services_test

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olenaliuby/social-media-api/apperr"
	"github.com/olenaliuby/social-media-api/models"
	"github.com/olenaliuby/social-media-api/scheduler"
	"github.com/olenaliuby/social-media-api/services"
	"github.com/olenaliuby/social-media-api/testutil"
)

func contents(posts []models.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Content)
	}
	return out
}

func TestCreatePostSynchronously(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := testutil.CreateProfile(t, e.db.DB, "alice")

	created, err := e.posts.Create(ctx, alice.UserID, services.PostInput{Content: "hello", Image: pngUpload("pic.PNG")})
	require.NoError(t, err)
	require.NotNil(t, created.Post)
	assert.Nil(t, created.ScheduledAt)
	assert.Equal(t, alice.ID, created.Post.AuthorID)
	require.NotNil(t, created.Post.Image)
	assert.True(t, strings.HasPrefix(*created.Post.Image, "post-images/"))
	assert.True(t, strings.HasSuffix(*created.Post.Image, ".png"))
	assert.Contains(t, e.media.files, *created.Post.Image)

	past := time.Now().Add(-time.Minute)
	created, err = e.posts.Create(ctx, alice.UserID, services.PostInput{Content: "late", ScheduledAt: &past})
	require.NoError(t, err)
	require.NotNil(t, created.Post, "a past scheduled_at is written right away")

	_, err = e.posts.Create(ctx, alice.UserID, services.PostInput{Content: "  "})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestScheduledPostAppearsAfterWorkerRuns(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := testutil.CreateProfile(t, e.db.DB, "alice")

	at := time.Now().Add(time.Hour).UTC()
	created, err := e.posts.Create(ctx, alice.UserID, services.PostInput{Content: "from the future", ScheduledAt: &at})
	require.NoError(t, err)
	assert.Nil(t, created.Post)
	require.NotNil(t, created.ScheduledAt)
	assert.True(t, created.ScheduledAt.Equal(at))

	list, err := e.posts.List(ctx, alice.UserID, services.PostFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	worker := scheduler.NewWorker(e.store, scheduler.Options{})
	worker.Handle(services.JobCreateScheduledPost, e.posts.PublishScheduled)

	n, err := worker.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "job is not due yet")

	worker.SetClock(func() time.Time { return at.Add(time.Second) })
	n, err = worker.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	list, err = e.posts.List(ctx, alice.UserID, services.PostFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "from the future", list[0].Content)
	assert.Equal(t, alice.ID, list[0].AuthorID)
}

func TestPublishScheduledRejectsBadPayloads(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	err := e.posts.PublishScheduled(ctx, []byte(`{"author_id": 12345, "content": "ghost"}`))
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = e.posts.PublishScheduled(ctx, []byte(`{"author_id": 1, "content": "x", "title": "nope"}`))
	assert.Error(t, err)

	err = e.posts.PublishScheduled(ctx, []byte(`not json`))
	assert.Error(t, err)
}

func TestPublishScheduledTwiceForOneJobCreatesOnePost(t *testing.T) {
	e := newEnv(t)
	alice := testutil.CreateProfile(t, e.db.DB, "alice")
	payload := []byte(`{"author_id": ` + strconv.Itoa(int(alice.ID)) + `, "content": "once", "image": null, "scheduled_at": "2030-01-01T00:00:00Z"}`)

	ctx := scheduler.WithJobID(context.Background(), 7)
	require.NoError(t, e.posts.PublishScheduled(ctx, payload))
	require.NoError(t, e.posts.PublishScheduled(ctx, payload))

	var count int64
	require.NoError(t, e.db.Model(&models.Post{}).Where("content = ?", "once").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	require.NoError(t, e.posts.PublishScheduled(scheduler.WithJobID(context.Background(), 8), payload))
	require.NoError(t, e.db.Model(&models.Post{}).Where("content = ?", "once").Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestPostWritesAreAuthorOnly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := testutil.CreateProfile(t, e.db.DB, "alice")
	bob := testutil.CreateProfile(t, e.db.DB, "bob")
	post := testutil.CreatePost(t, e.db.DB, alice, "mine")

	changed := "hijacked"
	_, err := e.posts.Update(ctx, bob.UserID, post.ID, &changed)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	assert.True(t, apperr.Is(e.posts.Delete(ctx, bob.UserID, post.ID), apperr.KindForbidden))
	_, err = e.posts.UploadImage(ctx, bob.UserID, post.ID, pngUpload("x.png"))
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	read, err := e.posts.Get(ctx, bob.UserID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", read.Content)

	edited := "edited"
	updated, err := e.posts.Update(ctx, alice.UserID, post.ID, &edited)
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	withImage, err := e.posts.UploadImage(ctx, alice.UserID, post.ID, pngUpload("x.png"))
	require.NoError(t, err)
	require.NotNil(t, withImage.Image)

	_, err = e.posts.UploadImage(ctx, alice.UserID, post.ID, &services.Upload{Filename: "x.txt", Body: strings.NewReader("text")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	require.NoError(t, e.posts.Delete(ctx, alice.UserID, post.ID))
	_, err = e.posts.Get(ctx, alice.UserID, post.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestLikeToggle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := testutil.CreateProfile(t, e.db.DB, "alice")
	bob := testutil.CreateProfile(t, e.db.DB, "bob")
	post := testutil.CreatePost(t, e.db.DB, alice, "likeable")

	require.NoError(t, e.posts.Like(ctx, bob.UserID, post.ID))
	err := e.posts.Like(ctx, bob.UserID, post.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	got, err := e.posts.Get(ctx, bob.UserID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.LikesCount)
	assert.True(t, got.LikedByUser)

	require.NoError(t, e.posts.Unlike(ctx, bob.UserID, post.ID))
	assert.True(t, apperr.Is(e.posts.Unlike(ctx, bob.UserID, post.ID), apperr.KindNotFound))
	assert.True(t, apperr.Is(e.posts.Like(ctx, bob.UserID, 4242), apperr.KindNotFound))
}

func TestFeedComposition(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := testutil.CreateProfile(t, e.db.DB, "alice")
	bob := testutil.CreateProfile(t, e.db.DB, "bob")
	carol := testutil.CreateProfile(t, e.db.DB, "carol")

	testutil.CreatePost(t, e.db.DB, alice, "alice writes")
	bobPost := testutil.CreatePost(t, e.db.DB, bob, "bob writes")
	carolPost := testutil.CreatePost(t, e.db.DB, carol, "carol writes")
	require.NoError(t, e.follows.Follow(ctx, alice.UserID, bob.ID))
	require.NoError(t, e.posts.Like(ctx, alice.UserID, carolPost.ID))

	feed, err := e.posts.Feed(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob writes"}, contents(feed))
	assert.Equal(t, bobPost.ID, feed[0].ID)

	mine, err := e.posts.MyPosts(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice writes"}, contents(mine))

	liked, err := e.posts.Liked(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{"carol writes"}, contents(liked))
	assert.True(t, liked[0].LikedByUser)

	all, err := e.posts.List(ctx, alice.UserID, services.PostFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byAuthor, err := e.posts.List(ctx, alice.UserID, services.PostFilter{AuthorUsername: "CAR"})
	require.NoError(t, err)
	assert.Equal(t, []string{"carol writes"}, contents(byAuthor))

	empty, err := e.posts.Feed(ctx, carol.UserID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

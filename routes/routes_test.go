package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olenaliuby/social-media-api/handlers"
	"github.com/olenaliuby/social-media-api/repositories"
	"github.com/olenaliuby/social-media-api/routes"
	"github.com/olenaliuby/social-media-api/scheduler"
	"github.com/olenaliuby/social-media-api/services"
	"github.com/olenaliuby/social-media-api/storage"
	"github.com/olenaliuby/social-media-api/testutil"
)

type app struct {
	t         *testing.T
	server    http.Handler
	worker    *scheduler.Worker
	mediaRoot string
}

func newApp(t *testing.T) *app {
	t.Helper()
	db := testutil.NewDB(t)
	store, err := scheduler.NewStore(db)
	require.NoError(t, err)
	mediaRoot := t.TempDir()
	media := storage.NewLocalStore(mediaRoot, "/media/")

	users := repositories.NewUserRepository(db.DB)
	tokens := repositories.NewTokenRepository(db.DB)
	profiles := repositories.NewProfileRepository(db.DB)
	posts := repositories.NewPostRepository(db.DB)

	accounts := services.NewAccountService(users, tokens, time.Minute, time.Hour)
	postService := services.NewPostService(profiles, posts, repositories.NewLikeRepository(db.DB), store, media)
	worker := scheduler.NewWorker(store, scheduler.Options{})
	worker.Handle(services.JobCreateScheduledPost, postService.PublishScheduled)

	h := routes.Handlers{
		User: handlers.NewUserHandler(accounts),
		Profile: handlers.NewProfileHandler(
			services.NewProfileService(profiles, media),
			services.NewFollowService(profiles, repositories.NewFollowRepository(db.DB)),
			media.URL),
		Post:    handlers.NewPostHandler(postService, media.URL),
		Comment: handlers.NewCommentHandler(services.NewCommentService(profiles, posts, repositories.NewCommentRepository(db.DB))),
		System:  handlers.NewSystemHandler(db),
	}
	return &app{
		t:         t,
		server:    routes.SetupRoutes(h, accounts, routes.Media{Root: mediaRoot, URL: "/media/"}),
		worker:    worker,
		mediaRoot: mediaRoot,
	}
}

func (a *app) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.server.ServeHTTP(rec, req)
	return rec
}

// signup registers an account and returns its access token.
func (a *app) signup(username string) string {
	a.t.Helper()
	email := username + "@example.com"
	rec := a.do(http.MethodPost, "/users/", "", map[string]string{
		"email": email, "password": "pass-" + username, "username": username,
		"first_name": strings.ToUpper(username[:1]) + username[1:], "last_name": "Doe",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(http.MethodPost, "/token/", "", map[string]string{"email": email, "password": "pass-" + username})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var pair struct{ Access, Refresh string }
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &pair))
	return pair.Access
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (a *app) myProfileID(token string) uint {
	a.t.Helper()
	rec := a.do(http.MethodGet, "/me/", token, nil)
	require.Equal(a.t, http.StatusOK, rec.Code)
	return decode[struct{ ID uint }](a.t, rec).ID
}

func TestAuthRequired(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodGet, "/posts/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"detail"`)

	rec = a.do(http.MethodGet, "/me/", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFollowEndpoints(t *testing.T) {
	a := newApp(t)
	alice := a.signup("alice")
	bob := a.signup("bob")
	aliceID := a.myProfileID(alice)
	bobID := a.myProfileID(bob)

	rec := a.do(http.MethodPost, fmt.Sprintf("/profiles/%d/follow/", aliceID), alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"You cannot follow yourself."}`, rec.Body.String())

	rec = a.do(http.MethodPost, fmt.Sprintf("/profiles/%d/follow/", bobID), alice, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(http.MethodPost, fmt.Sprintf("/profiles/%d/follow/", bobID), alice, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodGet, "/me/following/", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`[{"profile_id":%d,"username":"bob"}]`, bobID), rec.Body.String())

	rec = a.do(http.MethodGet, "/profiles/?username=BO", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]map[string]any](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, true, list[0]["followed_by_me"])
	assert.Equal(t, "Bob Doe", list[0]["full_name"])

	rec = a.do(http.MethodGet, fmt.Sprintf("/profiles/%d/", bobID), alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[map[string]any](t, rec)
	assert.Equal(t, float64(1), detail["followers_count"])

	rec = a.do(http.MethodPost, fmt.Sprintf("/profiles/%d/unfollow/", bobID), alice, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(http.MethodPost, fmt.Sprintf("/profiles/%d/unfollow/", bobID), alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodPost, "/profiles/9999/follow/", alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostLifecycle(t *testing.T) {
	a := newApp(t)
	alice := a.signup("alice")
	bob := a.signup("bob")

	rec := a.do(http.MethodPost, "/posts/", alice, map[string]string{"content": "hello world"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	post := decode[map[string]any](t, rec)
	postID := uint(post["id"].(float64))
	assert.Equal(t, "alice", post["author_username"])
	assert.NotContains(t, post, "scheduled_at")

	rec = a.do(http.MethodPatch, fmt.Sprintf("/posts/%d/", postID), bob, map[string]string{"content": "mine now"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPost, fmt.Sprintf("/posts/%d/like/", postID), bob, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(http.MethodPost, fmt.Sprintf("/posts/%d/like/", postID), bob, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodPost, fmt.Sprintf("/posts/%d/comments/", postID), bob, map[string]string{"content": "nice"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(http.MethodGet, fmt.Sprintf("/posts/%d/", postID), bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[map[string]any](t, rec)
	assert.Equal(t, float64(1), detail["likes_count"])
	assert.Equal(t, float64(1), detail["comments_count"])
	assert.Equal(t, true, detail["liked_by_user"])
	assert.Len(t, detail["comments"], 1)
	assert.Len(t, detail["likes"], 1)

	rec = a.do(http.MethodGet, "/posts/liked/", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = a.do(http.MethodGet, "/posts/feed/", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = a.do(http.MethodPost, fmt.Sprintf("/posts/%d/unlike/", postID), bob, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(http.MethodPost, fmt.Sprintf("/posts/%d/unlike/", postID), bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodDelete, fmt.Sprintf("/posts/%d/", postID), alice, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(http.MethodGet, fmt.Sprintf("/posts/%d/", postID), alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScheduledPostEndpoint(t *testing.T) {
	a := newApp(t)
	alice := a.signup("alice")
	at := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	rec := a.do(http.MethodPost, "/posts/", alice, map[string]string{
		"content":      "later",
		"scheduled_at": at.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"scheduled_at"`)

	rec = a.do(http.MethodGet, "/posts/", alice, nil)
	assert.JSONEq(t, `[]`, rec.Body.String())

	a.worker.SetClock(func() time.Time { return at.Add(time.Minute) })
	_, err := a.worker.RunOnce(t.Context())
	require.NoError(t, err)

	rec = a.do(http.MethodGet, "/posts/my-posts/", alice, nil)
	posts := decode[[]map[string]any](t, rec)
	require.Len(t, posts, 1)
	assert.Equal(t, "later", posts[0]["content"])
	assert.NotContains(t, posts[0], "scheduled_at")

	rec = a.do(http.MethodPost, "/posts/", alice, map[string]string{"content": "x", "scheduled_at": "tomorrow"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileImageUploadAndPreserve(t *testing.T) {
	a := newApp(t)
	alice := a.signup("alice")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("bio", "photographer"))
	fw, err := mw.CreateFormFile("profile_image", "me.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 32)))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPatch, "/me/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+alice)
	rec := httptest.NewRecorder()
	a.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	me := decode[map[string]any](t, rec)
	image, _ := me["profile_image"].(string)
	require.True(t, strings.HasPrefix(image, "/media/profile-images/"), image)
	assert.Equal(t, "photographer", me["bio"])
	assert.Equal(t, "alice@example.com", me["user_email"])

	_, err = os.Stat(filepath.Join(a.mediaRoot, strings.TrimPrefix(image, "/media/")))
	assert.NoError(t, err)

	rec = a.do(http.MethodPatch, "/me/", alice, map[string]string{"last_name": "Smith"})
	require.Equal(t, http.StatusOK, rec.Code)
	me = decode[map[string]any](t, rec)
	assert.Equal(t, image, me["profile_image"])
	assert.Equal(t, "Smith", me["last_name"])

	rec = a.do(http.MethodGet, image, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodDelete, "/me/", alice, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(http.MethodGet, "/me/", alice, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "tokens die with the identity")
}

func TestUpdateMeClearsNullableFields(t *testing.T) {
	a := newApp(t)
	alice := a.signup("alice")

	rec := a.do(http.MethodPatch, "/me/", alice, map[string]string{
		"bio": "hi", "phone_number": "123", "birth_date": "1990-01-02",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	me := decode[map[string]any](t, rec)
	assert.Equal(t, "hi", me["bio"])
	assert.Equal(t, "123", me["phone_number"])
	assert.Equal(t, "1990-01-02", me["birth_date"])

	rec = a.do(http.MethodPatch, "/me/", alice, map[string]any{
		"bio": nil, "phone_number": nil, "birth_date": nil, "last_name": "Smith",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	me = decode[map[string]any](t, rec)
	assert.Nil(t, me["bio"])
	assert.Nil(t, me["phone_number"])
	assert.Nil(t, me["birth_date"])
	assert.Equal(t, "Smith", me["last_name"])

	rec = a.do(http.MethodPatch, "/me/", alice, map[string]string{"birth_date": "1990-01-02"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(http.MethodPatch, "/me/", alice, map[string]string{"birth_date": ""})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, decode[map[string]any](t, rec)["birth_date"])

	rec = a.do(http.MethodGet, "/me/", alice, nil)
	me = decode[map[string]any](t, rec)
	assert.Nil(t, me["bio"])
	assert.Equal(t, "Smith", me["last_name"])
}

func TestTokenEndpoints(t *testing.T) {
	a := newApp(t)
	a.signup("carol")

	rec := a.do(http.MethodPost, "/token/", "", map[string]string{"email": "carol@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodPost, "/token/", "", map[string]string{"email": "carol@example.com", "password": "pass-carol"})
	require.Equal(t, http.StatusOK, rec.Code)
	pair := decode[struct{ Access, Refresh string }](t, rec)

	rec = a.do(http.MethodPost, "/token/refresh/", "", map[string]string{"refresh": pair.Refresh})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[struct{ Access string }](t, rec).Access)

	rec = a.do(http.MethodPost, "/token/blacklist/", pair.Access, map[string]string{"refresh": pair.Refresh})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Logged out successfully"}`, rec.Body.String())

	rec = a.do(http.MethodPost, "/token/refresh/", "", map[string]string{"refresh": pair.Refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodGet, "/users/me/", pair.Access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pw_hash")
	assert.Contains(t, rec.Body.String(), `"email":"carol@example.com"`)
}

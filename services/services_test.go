package services_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olenaliuby/social-media-api/database"
	"github.com/olenaliuby/social-media-api/repositories"
	"github.com/olenaliuby/social-media-api/scheduler"
	"github.com/olenaliuby/social-media-api/services"
	"github.com/olenaliuby/social-media-api/testutil"
)

const pngHeader = "\x89PNG\r\n\x1a\n"

type memMedia struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (m *memMedia) Save(_ context.Context, key string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key] = data
	return nil
}

type env struct {
	db       *database.DB
	media    *memMedia
	store    *scheduler.Store
	accounts *services.AccountService
	profiles *services.ProfileService
	follows  *services.FollowService
	posts    *services.PostService
	comments *services.CommentService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	store, err := scheduler.NewStore(db)
	require.NoError(t, err)
	media := &memMedia{files: map[string][]byte{}}

	users := repositories.NewUserRepository(db.DB)
	tokens := repositories.NewTokenRepository(db.DB)
	profileRepo := repositories.NewProfileRepository(db.DB)
	followRepo := repositories.NewFollowRepository(db.DB)
	postRepo := repositories.NewPostRepository(db.DB)
	likeRepo := repositories.NewLikeRepository(db.DB)
	commentRepo := repositories.NewCommentRepository(db.DB)

	return &env{
		db:       db,
		media:    media,
		store:    store,
		accounts: services.NewAccountService(users, tokens, accessTTL, refreshTTL),
		profiles: services.NewProfileService(profileRepo, media),
		follows:  services.NewFollowService(profileRepo, followRepo),
		posts:    services.NewPostService(profileRepo, postRepo, likeRepo, store, media),
		comments: services.NewCommentService(profileRepo, postRepo, commentRepo),
	}
}

func pngUpload(name string) *services.Upload {
	return &services.Upload{
		Filename: name,
		Body:     bytes.NewReader([]byte(pngHeader + strings.Repeat("\x00", 64))),
	}
}

// Package testutil opens throwaway databases and seeds fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/olenaliuby/social-media-api/database"
	"github.com/olenaliuby/social-media-api/models"
)

var seq atomic.Int64

// NewDB returns a migrated in-memory sqlite database private to the test.
func NewDB(t *testing.T) *database.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))
	db, err := database.New(database.DriverSQLite, dsn, false)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// one connection keeps the shared in-memory db alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(false); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateProfile inserts a user and profile named after username.
func CreateProfile(t *testing.T, db *gorm.DB, username string) *models.Profile {
	t.Helper()
	user := models.User{Email: username + "@example.com", PwHash: "x", IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	profile := models.Profile{
		UserID:    user.ID,
		Username:  username,
		FirstName: capitalize(username),
		LastName:  "Tester",
	}
	if err := db.Omit(clause.Associations).Create(&profile).Error; err != nil {
		t.Fatalf("create profile %s: %v", username, err)
	}
	profile.User = &user
	return &profile
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return strings.ToUpper(string(r)) + s[size:]
}

func CreatePost(t *testing.T, db *gorm.DB, author *models.Profile, content string) *models.Post {
	t.Helper()
	post := models.Post{AuthorID: author.ID, Content: content}
	if err := db.Omit(clause.Associations).Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return &post
}

func Follow(t *testing.T, db *gorm.DB, follower, following *models.Profile) {
	t.Helper()
	if err := db.Create(&models.Follow{FollowerID: follower.ID, FollowingID: following.ID}).Error; err != nil {
		t.Fatalf("follow: %v", err)
	}
}

func Like(t *testing.T, db *gorm.DB, profile *models.Profile, post *models.Post) {
	t.Helper()
	if err := db.Create(&models.Like{ProfileID: profile.ID, PostID: post.ID}).Error; err != nil {
		t.Fatalf("like: %v", err)
	}
}

package repositories

import (
	"context"
	"time"

	"github.com/olenaliuby/social-media-api/models"
)

type UserRepository interface {
	// CreateWithProfile inserts the identity and its profile in one transaction.
	CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Exists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *models.User) error
}

// ProfileFilter holds case-insensitive substring filters. Empty fields are ignored.
type ProfileFilter struct {
	Username  string
	FirstName string
	LastName  string
}

type ProfileRepository interface {
	// FindByUserID loads the caller's own profile with its identity and follow counts.
	FindByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	// FindByID loads a profile annotated for viewerID.
	FindByID(ctx context.Context, id, viewerID uint) (*models.Profile, error)
	List(ctx context.Context, filter ProfileFilter, viewerID uint) ([]models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	// DeleteWithOwner removes the profile, everything it owns and its identity.
	DeleteWithOwner(ctx context.Context, profile *models.Profile) error
	Followers(ctx context.Context, profileID uint) ([]models.Follow, error)
	Following(ctx context.Context, profileID uint) ([]models.Follow, error)
}

type FollowRepository interface {
	Exists(ctx context.Context, followerID, followingID uint) (bool, error)
	Create(ctx context.Context, follow *models.Follow) error
	// Delete reports whether an edge was removed.
	Delete(ctx context.Context, followerID, followingID uint) (bool, error)
}

// PostQuery selects posts for the list views. Zero-valued fields are ignored.
type PostQuery struct {
	ViewerID       uint
	Content        string
	AuthorUsername string
	AuthorID       uint
	FollowedBy     uint
	LikedBy        uint
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	// FindByID loads an annotated post with its author.
	FindByID(ctx context.Context, id, viewerID uint) (*models.Post, error)
	// FindDetail also loads ordered comments and likes.
	FindDetail(ctx context.Context, id, viewerID uint) (*models.Post, error)
	List(ctx context.Context, query PostQuery) ([]models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	SetImage(ctx context.Context, id uint, ref string) error
	Delete(ctx context.Context, id uint) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, postID, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
}

type LikeRepository interface {
	Exists(ctx context.Context, profileID, postID uint) (bool, error)
	Create(ctx context.Context, like *models.Like) error
	Delete(ctx context.Context, profileID, postID uint) (bool, error)
}

type TokenRepository interface {
	Create(ctx context.Context, token *models.AuthToken) error
	FindByHash(ctx context.Context, hash string) (*models.AuthToken, error)
	Blacklist(ctx context.Context, id uint, at time.Time) error
	DeleteBlacklisted(ctx context.Context) (int64, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

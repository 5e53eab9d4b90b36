package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/olenaliuby/social-media-api/models"
)

const profileColumns = `profiles.*,
	(SELECT COUNT(*) FROM follows WHERE follows.following_id = profiles.id) AS followers_count,
	(SELECT COUNT(*) FROM follows WHERE follows.follower_id = profiles.id) AS following_count,
	EXISTS (SELECT 1 FROM follows WHERE follows.following_id = profiles.id AND follows.follower_id = ?) AS followed_by_me`

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) annotated(ctx context.Context, viewerID uint) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Profile{}).Select(profileColumns, viewerID)
}

func (r *profileRepository) FindByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := r.annotated(ctx, 0).
		Preload("User").
		Where("profiles.user_id = ?", userID).
		Take(&profile).Error
	if err != nil {
		return nil, translate(err, "Profile")
	}
	return &profile, nil
}

func (r *profileRepository) FindByID(ctx context.Context, id, viewerID uint) (*models.Profile, error) {
	var profile models.Profile
	err := r.annotated(ctx, viewerID).
		Preload("User").
		Where("profiles.id = ?", id).
		Take(&profile).Error
	if err != nil {
		return nil, translate(err, "Profile")
	}
	return &profile, nil
}

func (r *profileRepository) List(ctx context.Context, filter ProfileFilter, viewerID uint) ([]models.Profile, error) {
	q := r.annotated(ctx, viewerID)
	if filter.Username != "" {
		q = q.Where("LOWER(profiles.username)"+likeClause, containsPattern(filter.Username))
	}
	if filter.FirstName != "" {
		q = q.Where("LOWER(profiles.first_name)"+likeClause, containsPattern(filter.FirstName))
	}
	if filter.LastName != "" {
		q = q.Where("LOWER(profiles.last_name)"+likeClause, containsPattern(filter.LastName))
	}

	profiles := make([]models.Profile, 0)
	err := q.Order("profiles.first_name, profiles.last_name, profiles.id").Find(&profiles).Error
	return profiles, err
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(profile).Error, "Profile")
}

func (r *profileRepository) DeleteWithOwner(ctx context.Context, profile *models.Profile) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownPosts := tx.Model(&models.Post{}).Select("id").Where("author_id = ?", profile.ID)

		if err := tx.Where("profile_id = ? OR post_id IN (?)", profile.ID, ownPosts).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ? OR post_id IN (?)", profile.ID, ownPosts).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", profile.ID).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("follower_id = ? OR following_id = ?", profile.ID, profile.ID).Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Profile{}, profile.ID).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", profile.UserID).Delete(&models.AuthToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, profile.UserID).Error
	})
	return translate(err, "Profile")
}

func (r *profileRepository) Followers(ctx context.Context, profileID uint) ([]models.Follow, error) {
	follows := make([]models.Follow, 0)
	err := r.db.WithContext(ctx).
		Preload("Follower").
		Where("following_id = ?", profileID).
		Order("followed_at DESC, id DESC").
		Find(&follows).Error
	return follows, err
}

func (r *profileRepository) Following(ctx context.Context, profileID uint) ([]models.Follow, error) {
	follows := make([]models.Follow, 0)
	err := r.db.WithContext(ctx).
		Preload("Following").
		Where("follower_id = ?", profileID).
		Order("followed_at DESC, id DESC").
		Find(&follows).Error
	return follows, err
}

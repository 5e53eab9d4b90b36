package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/olenaliuby/social-media-api/models"
)

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Exists(ctx context.Context, profileID, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("profile_id = ? AND post_id = ?", profileID, postID).
		Count(&count).Error
	return count > 0, err
}

func (r *likeRepository) Create(ctx context.Context, like *models.Like) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(like).Error, "Like")
}

func (r *likeRepository) Delete(ctx context.Context, profileID, postID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("profile_id = ? AND post_id = ?", profileID, postID).
		Delete(&models.Like{})
	return res.RowsAffected > 0, res.Error
}

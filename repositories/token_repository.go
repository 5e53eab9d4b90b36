package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/olenaliuby/social-media-api/models"
)

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *models.AuthToken) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(token).Error, "Token")
}

func (r *tokenRepository) FindByHash(ctx context.Context, hash string) (*models.AuthToken, error) {
	var token models.AuthToken
	err := r.db.WithContext(ctx).Where("token_hash = ?", hash).Take(&token).Error
	if err != nil {
		return nil, translate(err, "Token")
	}
	return &token, nil
}

func (r *tokenRepository) Blacklist(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.AuthToken{ID: id}).Update("blacklisted_at", at).Error
}

func (r *tokenRepository) DeleteBlacklisted(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("blacklisted_at IS NOT NULL").Delete(&models.AuthToken{})
	return res.RowsAffected, res.Error
}

func (r *tokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", before).Delete(&models.AuthToken{})
	return res.RowsAffected, res.Error
}

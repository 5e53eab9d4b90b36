package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/olenaliuby/social-media-api/models"
)

// postColumns is the annotated base shared by every post view. The viewer's
// profile id binds the liked_by_user subquery.
const postColumns = `posts.*,
	(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count,
	(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count,
	EXISTS (SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.profile_id = ?) AS liked_by_user`

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) annotated(ctx context.Context, viewerID uint) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Post{}).
		Select(postColumns, viewerID).
		Preload("Author")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error, "Post")
}

func (r *postRepository) FindByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := r.annotated(ctx, viewerID).Where("posts.id = ?", id).Take(&post).Error
	if err != nil {
		return nil, translate(err, "Post")
	}
	return &post, nil
}

func (r *postRepository) FindDetail(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := r.annotated(ctx, viewerID).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("commented_at DESC, id DESC")
		}).
		Preload("Comments.Author").
		Preload("Likes", func(db *gorm.DB) *gorm.DB {
			return db.Order("liked_at DESC, id DESC")
		}).
		Preload("Likes.Profile").
		Where("posts.id = ?", id).
		Take(&post).Error
	if err != nil {
		return nil, translate(err, "Post")
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, query PostQuery) ([]models.Post, error) {
	q := r.annotated(ctx, query.ViewerID)

	if query.Content != "" {
		q = q.Where("LOWER(posts.content)"+likeClause, containsPattern(query.Content))
	}
	if query.AuthorUsername != "" {
		q = q.Joins("JOIN profiles AS authors ON authors.id = posts.author_id").
			Where("LOWER(authors.username)"+likeClause, containsPattern(query.AuthorUsername))
	}
	if query.AuthorID != 0 {
		q = q.Where("posts.author_id = ?", query.AuthorID)
	}
	if query.FollowedBy != 0 {
		following := r.db.WithContext(ctx).Model(&models.Follow{}).
			Select("following_id").
			Where("follower_id = ?", query.FollowedBy)
		q = q.Where("posts.author_id IN (?)", following)
	}
	if query.LikedBy != 0 {
		liked := r.db.WithContext(ctx).Model(&models.Like{}).
			Select("post_id").
			Where("profile_id = ?", query.LikedBy)
		q = q.Where("posts.id IN (?)", liked)
	}

	posts := make([]models.Post, 0)
	err := q.Order("posts.created_at DESC, posts.id DESC").Find(&posts).Error
	return posts, err
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Model(&models.Post{ID: post.ID}).
		Updates(map[string]interface{}{"content": post.Content}).Error
	return translate(err, "Post")
}

func (r *postRepository) SetImage(ctx context.Context, id uint, ref string) error {
	res := r.db.WithContext(ctx).Model(&models.Post{ID: id}).Update("image", ref)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "Post")
	}
	return nil
}

// Delete removes the post with its comments and likes.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err, "Post")
}

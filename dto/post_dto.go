package dto

import (
	"time"

	"github.com/olenaliuby/social-media-api/models"
)

type PostDTO struct {
	ID             uint      `json:"id"`
	AuthorUsername string    `json:"author_username"`
	AuthorFullName string    `json:"author_full_name"`
	AuthorImage    *string   `json:"author_image"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	Image          *string   `json:"image"`
	LikesCount     int64     `json:"likes_count"`
	CommentsCount  int64     `json:"comments_count"`
}

type PostListDTO struct {
	PostDTO
	LikedByUser bool `json:"liked_by_user"`
}

type PostDetailDTO struct {
	PostDTO
	LikedByUser bool         `json:"liked_by_user"`
	Comments    []CommentDTO `json:"comments"`
	Likes       []LikeDTO    `json:"likes"`
}

type CommentDTO struct {
	ID             uint      `json:"id"`
	AuthorUsername string    `json:"author_username"`
	PostID         uint      `json:"post_id"`
	Content        string    `json:"content"`
	CommentedAt    time.Time `json:"commented_at"`
}

type LikeDTO struct {
	ID      uint   `json:"id"`
	LikedBy string `json:"liked_by"`
}

type PostImageDTO struct {
	ID    uint    `json:"id"`
	Image *string `json:"image"`
}

// ScheduledDTO answers a create that was deferred.
type ScheduledDTO struct {
	Detail      string    `json:"detail"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

func Post(p *models.Post, url URLFunc) PostDTO {
	out := PostDTO{
		ID:            p.ID,
		Content:       p.Content,
		CreatedAt:     p.CreatedAt,
		Image:         mediaURL(url, p.Image),
		LikesCount:    p.LikesCount,
		CommentsCount: p.CommentsCount,
	}
	if p.Author != nil {
		out.AuthorUsername = p.Author.Username
		out.AuthorFullName = p.Author.FullName()
		out.AuthorImage = mediaURL(url, p.Author.ProfileImage)
	}
	return out
}

func PostList(posts []models.Post, url URLFunc) []PostListDTO {
	out := make([]PostListDTO, 0, len(posts))
	for i := range posts {
		out = append(out, PostListDTO{PostDTO: Post(&posts[i], url), LikedByUser: posts[i].LikedByUser})
	}
	return out
}

func PostDetail(p *models.Post, url URLFunc) PostDetailDTO {
	out := PostDetailDTO{
		PostDTO:     Post(p, url),
		LikedByUser: p.LikedByUser,
		Comments:    CommentList(p.Comments),
		Likes:       make([]LikeDTO, 0, len(p.Likes)),
	}
	for _, l := range p.Likes {
		row := LikeDTO{ID: l.ID}
		if l.Profile != nil {
			row.LikedBy = l.Profile.Username
		}
		out.Likes = append(out.Likes, row)
	}
	return out
}

func PostImage(p *models.Post, url URLFunc) PostImageDTO {
	return PostImageDTO{ID: p.ID, Image: mediaURL(url, p.Image)}
}

func Comment(c *models.Comment) CommentDTO {
	out := CommentDTO{
		ID:          c.ID,
		PostID:      c.PostID,
		Content:     c.Content,
		CommentedAt: c.CommentedAt,
	}
	if c.Author != nil {
		out.AuthorUsername = c.Author.Username
	}
	return out
}

func CommentList(comments []models.Comment) []CommentDTO {
	out := make([]CommentDTO, 0, len(comments))
	for i := range comments {
		out = append(out, Comment(&comments[i]))
	}
	return out
}

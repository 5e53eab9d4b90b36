package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/olenaliuby/social-media-api/apperr"
	"github.com/olenaliuby/social-media-api/dto"
	"github.com/olenaliuby/social-media-api/httpx"
	"github.com/olenaliuby/social-media-api/models"
	"github.com/olenaliuby/social-media-api/services"
)

// PostHandler serves /posts/ and the feed views.
type PostHandler struct {
	Posts    *services.PostService
	MediaURL dto.URLFunc
}

func NewPostHandler(posts *services.PostService, mediaURL dto.URLFunc) *PostHandler {
	return &PostHandler{Posts: posts, MediaURL: mediaURL}
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	posts, err := h.Posts.List(r.Context(), currentUser(r), services.PostFilter{
		Content:        q.Get("content"),
		AuthorUsername: q.Get("author_username"),
	})
	h.writeList(w, r, posts, err)
}

// Create writes the post now, or answers 202 when scheduled_at is in the future.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := readInput(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	image, closeImage, err := in.upload("image")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	defer closeImage()

	bad := map[string]string{}
	content, _ := in.get("content")
	post := services.PostInput{
		Content:     content,
		ScheduledAt: in.timeValue("scheduled_at", time.RFC3339, bad),
		Image:       image,
	}
	if len(bad) > 0 {
		httpx.Error(w, r, apperr.Validation(bad))
		return
	}

	created, err := h.Posts.Create(r.Context(), currentUser(r), post)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if created.Post == nil {
		httpx.JSON(w, http.StatusAccepted, dto.ScheduledDTO{
			Detail:      "Post scheduled for publication.",
			ScheduledAt: *created.ScheduledAt,
		})
		return
	}
	httpx.JSON(w, http.StatusCreated, dto.Post(created.Post, h.MediaURL))
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	post, err := h.Posts.Get(r.Context(), currentUser(r), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dto.PostDetail(post, h.MediaURL))
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	in, err := readInput(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	post, err := h.Posts.Update(r.Context(), currentUser(r), id, in.ptr("content"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dto.Post(post, h.MediaURL))
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = h.Posts.Delete(r.Context(), currentUser(r), id)
	}
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *PostHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	in, err := readInput(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	image, closeImage, err := in.upload("image")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	defer closeImage()

	post, err := h.Posts.UploadImage(r.Context(), currentUser(r), id, image)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dto.PostImage(post, h.MediaURL))
}

func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Posts.Like)
}

func (h *PostHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Posts.Unlike)
}

func (h *PostHandler) MyPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Posts.MyPosts(r.Context(), currentUser(r))
	h.writeList(w, r, posts, err)
}

func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Posts.Feed(r.Context(), currentUser(r))
	h.writeList(w, r, posts, err)
}

func (h *PostHandler) Liked(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Posts.Liked(r.Context(), currentUser(r))
	h.writeList(w, r, posts, err)
}

func (h *PostHandler) toggle(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID, postID uint) error) {
	id, err := pathID(r, "id")
	if err == nil {
		err = op(r.Context(), currentUser(r), id)
	}
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *PostHandler) writeList(w http.ResponseWriter, r *http.Request, posts []models.Post, err error) {
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dto.PostList(posts, h.MediaURL))
}

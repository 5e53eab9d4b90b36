package handlers

import (
	"net/http"

	"github.com/olenaliuby/social-media-api/dto"
	"github.com/olenaliuby/social-media-api/httpx"
	"github.com/olenaliuby/social-media-api/services"
)

// CommentHandler serves /posts/{post_id}/comments/.
type CommentHandler struct {
	Comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{Comments: comments}
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "post_id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	comments, err := h.Comments.List(r.Context(), currentUser(r), postID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dto.CommentList(comments))
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "post_id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	in, err := readInput(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	content, _ := in.get("content")
	comment, err := h.Comments.Create(r.Context(), currentUser(r), postID, content)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, dto.Comment(comment))
}

func (h *CommentHandler) Get(w http.ResponseWriter, r *http.Request) {
	postID, id, err := commentIDs(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	comment, err := h.Comments.Get(r.Context(), currentUser(r), postID, id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dto.Comment(comment))
}

func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	postID, id, err := commentIDs(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	in, err := readInput(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	comment, err := h.Comments.Update(r.Context(), currentUser(r), postID, id, in.ptr("content"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dto.Comment(comment))
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	postID, id, err := commentIDs(r)
	if err == nil {
		err = h.Comments.Delete(r.Context(), currentUser(r), postID, id)
	}
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func commentIDs(r *http.Request) (uint, uint, error) {
	postID, err := pathID(r, "post_id")
	if err != nil {
		return 0, 0, err
	}
	id, err := pathID(r, "id")
	if err != nil {
		return 0, 0, err
	}
	return postID, id, nil
}

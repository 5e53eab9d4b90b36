package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olenaliuby/social-media-api/apperr"
	"github.com/stretchr/testify/assert"
)

func TestErrorRendersKind(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/posts/1/", nil)

	rec := httptest.NewRecorder()
	Error(rec, req, apperr.Conflict("You already liked this post."))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"detail":"You already liked this post."}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Error(rec, req, apperr.Validation(map[string]string{"content": "This field may not be blank."}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"Invalid input.","errors":{"content":"This field may not be blank."}}`, rec.Body.String())
}

func TestErrorHidesInternal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/posts/", nil)
	rec := httptest.NewRecorder()

	Error(rec, req, errors.New("connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestJSONNil(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, nil)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "null", rec.Body.String())
}

// Package storage persists uploaded media and resolves their public URLs.
package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	ProfileImages = "profile-images"
	PostImages    = "post-images"
)

// Store saves media under a key and maps keys to URLs.
type Store interface {
	Save(ctx context.Context, key string, body io.Reader) error
	URL(key string) string
}

// UploadPath returns a fresh key for an upload, keeping only its extension.
func UploadPath(dir, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(dir, uuid.New().String()+ext)
}

var ErrNotImage = errors.New("upload a valid image")

// SniffImage checks that body starts like an image and returns a reader over
// the whole body.
func SniffImage(body io.Reader) (io.Reader, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	head = head[:n]
	if !strings.HasPrefix(http.DetectContentType(head), "image/") {
		return nil, ErrNotImage
	}
	return io.MultiReader(bytes.NewReader(head), body), nil
}

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/olenaliuby/social-media-api/apperr"
	"github.com/olenaliuby/social-media-api/auth"
	"github.com/olenaliuby/social-media-api/services"
)

const maxUploadBytes = 10 << 20

// input is a request body read either from JSON or from a multipart form.
// Only string fields are accepted; absent fields are not in values and
// explicit JSON nulls are recorded in nulls.
type input struct {
	values map[string]string
	nulls  map[string]bool
	files  map[string]*multipart.FileHeader
}

func readInput(r *http.Request) (*input, error) {
	in := &input{values: map[string]string{}, nulls: map[string]bool{}, files: map[string]*multipart.FileHeader{}}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, "Multipart form parse error.", err)
		}
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				in.values[k] = v[0]
			}
		}
		for k, v := range r.MultipartForm.File {
			if len(v) > 0 {
				in.files[k] = v[0]
			}
		}
		return in, nil
	}

	raw := map[string]any{}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return in, nil
		}
		return nil, apperr.Wrap(apperr.KindValidation, "JSON parse error.", err)
	}
	bad := map[string]string{}
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			in.nulls[k] = true
		case string:
			in.values[k] = val
		default:
			bad[k] = "Not a valid string."
		}
	}
	if len(bad) > 0 {
		return nil, apperr.Validation(bad)
	}
	return in, nil
}

func (in *input) get(key string) (string, bool) {
	v, ok := in.values[key]
	return v, ok
}

func (in *input) ptr(key string) *string {
	if v, ok := in.values[key]; ok {
		return &v
	}
	return nil
}

// upload opens the named file. The returned closer is never nil.
// cleared reports whether key was sent as null. A blank string counts as
// null too, so multipart forms can clear a field.
func (in *input) cleared(key string) bool {
	if in.nulls[key] {
		return true
	}
	v, ok := in.values[key]
	return ok && strings.TrimSpace(v) == ""
}

func (in *input) upload(key string) (*services.Upload, func(), error) {
	fh, ok := in.files[key]
	if !ok {
		return nil, func() {}, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &services.Upload{Filename: fh.Filename, Body: f}, func() { f.Close() }, nil
}

func (in *input) timeValue(key, layout string, bad map[string]string) *time.Time {
	v, ok := in.values[key]
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	t, err := time.Parse(layout, v)
	if err != nil {
		bad[key] = "Wrong format. Use " + layout + "."
		return nil
	}
	return &t
}

func pathID(r *http.Request, key string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[key], 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NotFound("Not found.")
	}
	return uint(id), nil
}

func currentUser(r *http.Request) uint {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}

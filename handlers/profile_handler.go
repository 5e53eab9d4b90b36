package handlers

import (
	"net/http"

	"github.com/olenaliuby/social-media-api/apperr"
	"github.com/olenaliuby/social-media-api/dto"
	"github.com/olenaliuby/social-media-api/httpx"
	"github.com/olenaliuby/social-media-api/repositories"
	"github.com/olenaliuby/social-media-api/services"
)

// ProfileHandler serves /me/ and /profiles/.
type ProfileHandler struct {
	Profiles *services.ProfileService
	Follows  *services.FollowService
	MediaURL dto.URLFunc
}

func NewProfileHandler(profiles *services.ProfileService, follows *services.FollowService, mediaURL dto.URLFunc) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles, Follows: follows, MediaURL: mediaURL}
}

func (h *ProfileHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Profiles.Me(r.Context(), currentUser(r))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dto.Profile(profile, h.MediaURL))
}

// UpdateMe accepts JSON or multipart. A missing or empty profile_image
// file keeps the stored image; null clears bio, phone_number and birth_date.
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	in, err := readInput(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	image, closeImage, err := in.upload("profile_image")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	defer closeImage()

	bad := map[string]string{}
	update := services.ProfileUpdate{
		Username:    in.ptr("username"),
		FirstName:   in.ptr("first_name"),
		LastName:    in.ptr("last_name"),
		Bio:         in.ptr("bio"),
		PhoneNumber: in.ptr("phone_number"),
		BirthDate:   in.timeValue("birth_date", "2006-01-02", bad),
		Image:       image,

		ClearBio:         in.nulls["bio"],
		ClearPhoneNumber: in.nulls["phone_number"],
		ClearBirthDate:   in.cleared("birth_date"),
	}
	if len(bad) > 0 {
		httpx.Error(w, r, apperr.Validation(bad))
		return
	}

	profile, err := h.Profiles.UpdateMe(r.Context(), currentUser(r), update)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dto.Profile(profile, h.MediaURL))
}

func (h *ProfileHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.Profiles.DeleteMe(r.Context(), currentUser(r)); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *ProfileHandler) MyFollowers(w http.ResponseWriter, r *http.Request) {
	edges, err := h.Follows.Followers(r.Context(), currentUser(r))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dto.Followers(edges))
}

func (h *ProfileHandler) MyFollowing(w http.ResponseWriter, r *http.Request) {
	edges, err := h.Follows.Following(r.Context(), currentUser(r))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dto.Following(edges))
}

func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	profiles, err := h.Profiles.List(r.Context(), currentUser(r), repositories.ProfileFilter{
		Username:  q.Get("username"),
		FirstName: q.Get("first_name"),
		LastName:  q.Get("last_name"),
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dto.ProfileList(profiles, h.MediaURL))
}

func (h *ProfileHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	detail, err := h.Profiles.Detail(r.Context(), currentUser(r), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dto.ProfileDetail(detail.Profile, detail.Followers, detail.Following, h.MediaURL))
}

func (h *ProfileHandler) Follow(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = h.Follows.Follow(r.Context(), currentUser(r), id)
	}
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *ProfileHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = h.Follows.Unfollow(r.Context(), currentUser(r), id)
	}
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.NoContent(w)
}

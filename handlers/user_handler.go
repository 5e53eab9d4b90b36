package handlers

import (
	"net/http"

	"github.com/olenaliuby/social-media-api/dto"
	"github.com/olenaliuby/social-media-api/httpx"
	"github.com/olenaliuby/social-media-api/services"
)

// UserHandler serves account registration, the identity endpoints and token issuance.
type UserHandler struct {
	Accounts *services.AccountService
}

func NewUserHandler(accounts *services.AccountService) *UserHandler {
	return &UserHandler{Accounts: accounts}
}

// RegisterHandler creates an identity and its profile.
func (h *UserHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	in, err := readInput(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	email, _ := in.get("email")
	password, _ := in.get("password")
	username, _ := in.get("username")
	firstName, _ := in.get("first_name")
	lastName, _ := in.get("last_name")

	user, err := h.Accounts.Register(r.Context(), services.Registration{
		Email:     email,
		Password:  password,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, dto.User(user))
}

func (h *UserHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.Accounts.Me(r.Context(), currentUser(r))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dto.User(user))
}

func (h *UserHandler) UpdateMeHandler(w http.ResponseWriter, r *http.Request) {
	in, err := readInput(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	user, err := h.Accounts.UpdateMe(r.Context(), currentUser(r), services.AccountUpdate{
		Email:    in.ptr("email"),
		Password: in.ptr("password"),
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dto.User(user))
}

// TokenHandler issues an access/refresh pair for email and password.
func (h *UserHandler) TokenHandler(w http.ResponseWriter, r *http.Request) {
	in, err := readInput(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	email, _ := in.get("email")
	password, _ := in.get("password")

	pair, err := h.Accounts.Login(r.Context(), email, password)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pair)
}

func (h *UserHandler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	in, err := readInput(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	refresh, _ := in.get("refresh")
	pair, err := h.Accounts.Refresh(r.Context(), refresh)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pair)
}

// BlacklistHandler logs out by revoking the refresh token.
func (h *UserHandler) BlacklistHandler(w http.ResponseWriter, r *http.Request) {
	in, err := readInput(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	refresh, _ := in.get("refresh")
	if err := h.Accounts.Blacklist(r.Context(), refresh); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

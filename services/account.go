package services

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/olenaliuby/social-media-api/apperr"
	"github.com/olenaliuby/social-media-api/auth"
	"github.com/olenaliuby/social-media-api/models"
	"github.com/olenaliuby/social-media-api/monitoring"
	"github.com/olenaliuby/social-media-api/repositories"
	"github.com/olenaliuby/social-media-api/validation"
)

const minPasswordLength = 5

type AccountService struct {
	users      repositories.UserRepository
	tokens     repositories.TokenRepository
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewAccountService(users repositories.UserRepository, tokens repositories.TokenRepository, accessTTL, refreshTTL time.Duration) *AccountService {
	return &AccountService{
		users:      users,
		tokens:     tokens,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

type Registration struct {
	Email     string
	Password  string
	Username  string
	FirstName string
	LastName  string
}

// TokenPair is returned by Login. Refresh only returns Access.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Register creates the identity and its profile together.
func (s *AccountService) Register(ctx context.Context, reg Registration) (*models.User, error) {
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))

	v := validation.Violations{}
	validation.Required("email", reg.Email, v)
	if _, ok := v["email"]; !ok {
		validation.Email("email", reg.Email, v)
	}
	validation.MinLength("password", reg.Password, minPasswordLength, v)
	validation.Required("username", reg.Username, v)
	validation.MaxLength("username", reg.Username, 50, v)
	validation.MaxLength("first_name", reg.FirstName, 50, v)
	validation.MaxLength("last_name", reg.LastName, 50, v)
	if !v.Empty() {
		return nil, apperr.Validation(v)
	}

	exists, err := s.users.Exists(ctx, reg.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Validation(map[string]string{"email": "user with this email already exists."})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{Email: reg.Email, PwHash: string(hash), IsActive: true}
	profile := &models.Profile{Username: reg.Username, FirstName: reg.FirstName, LastName: reg.LastName}
	if err := s.users.CreateWithProfile(ctx, user, profile); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, apperr.Validation(map[string]string{"email": "user with this email already exists."})
		}
		return nil, err
	}

	monitoring.RegisterSuccess.Inc()
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "profile_id": profile.ID}).Info("Account registered")
	return user, nil
}

func (s *AccountService) Me(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

type AccountUpdate struct {
	Email    *string
	Password *string
}

func (s *AccountService) UpdateMe(ctx context.Context, userID uint, in AccountUpdate) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	v := validation.Violations{}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		validation.Email("email", email, v)
		user.Email = email
	}
	if in.Password != nil {
		validation.MinLength("password", *in.Password, minPasswordLength, v)
	}
	if !v.Empty() {
		return nil, apperr.Validation(v)
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PwHash = string(hash)
	}

	if err := s.users.Update(ctx, user); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, apperr.Validation(map[string]string{"email": "user with this email already exists."})
		}
		return nil, err
	}
	return user, nil
}

// Login checks credentials and issues an access/refresh pair.
func (s *AccountService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	invalid := apperr.Unauthenticated("No active account found with the given credentials")

	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			monitoring.LoginFailure.WithLabelValues("unknown_email").Inc()
			return nil, invalid
		}
		return nil, err
	}
	if !user.IsActive {
		monitoring.LoginFailure.WithLabelValues("inactive").Inc()
		return nil, invalid
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PwHash), []byte(password)) != nil {
		monitoring.LoginFailure.WithLabelValues("invalid_password").Inc()
		return nil, invalid
	}

	access, err := s.issue(ctx, user.ID, models.TokenKindAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issue(ctx, user.ID, models.TokenKindRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	monitoring.LoginSuccess.Inc()
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a live refresh token for a new access token.
func (s *AccountService) Refresh(ctx context.Context, refresh string) (*TokenPair, error) {
	token, err := s.lookup(ctx, refresh, models.TokenKindRefresh)
	if err != nil {
		return nil, err
	}
	access, err := s.issue(ctx, token.UserID, models.TokenKindAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access}, nil
}

// Blacklist revokes a refresh token.
func (s *AccountService) Blacklist(ctx context.Context, refresh string) error {
	token, err := s.lookup(ctx, refresh, models.TokenKindRefresh)
	if err != nil {
		return err
	}
	return s.tokens.Blacklist(ctx, token.ID, s.now().UTC())
}

// ResolveAccessToken implements auth.Resolver.
func (s *AccountService) ResolveAccessToken(ctx context.Context, raw string) (uint, error) {
	token, err := s.lookup(ctx, raw, models.TokenKindAccess)
	if err != nil {
		return 0, err
	}
	user, err := s.users.FindByID(ctx, token.UserID)
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return 0, err
	}
	if err != nil || !user.IsActive {
		return 0, apperr.Unauthenticated("User not found")
	}
	return user.ID, nil
}

// CleanupTokens deletes blacklisted tokens, and expired ones too when expired is set.
func (s *AccountService) CleanupTokens(ctx context.Context, expired bool) (int64, error) {
	n, err := s.tokens.DeleteBlacklisted(ctx)
	if err != nil {
		return n, err
	}
	if expired {
		m, err := s.tokens.DeleteExpired(ctx, s.now().UTC())
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func (s *AccountService) issue(ctx context.Context, userID uint, kind string, ttl time.Duration) (string, error) {
	raw, hash, err := auth.NewToken()
	if err != nil {
		return "", err
	}
	token := &models.AuthToken{
		UserID:    userID,
		Kind:      kind,
		TokenHash: hash,
		ExpiresAt: s.now().Add(ttl).UTC(),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return "", err
	}
	return raw, nil
}

func (s *AccountService) lookup(ctx context.Context, raw, kind string) (*models.AuthToken, error) {
	invalid := apperr.Unauthenticated("Token is invalid or expired")
	if raw == "" {
		return nil, invalid
	}
	token, err := s.tokens.FindByHash(ctx, auth.HashToken(raw))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if token.Kind != kind || token.BlacklistedAt != nil || !s.now().Before(token.ExpiresAt) {
		return nil, invalid
	}
	return token, nil
}

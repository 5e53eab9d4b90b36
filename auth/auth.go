// Package auth issues opaque bearer tokens and authenticates requests carrying them.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/securecookie"

	"github.com/olenaliuby/social-media-api/httpx"
)

type ctxKey string

const userIDCtxKey = ctxKey("userID")

const tokenBytes = 32

var errNoEntropy = errors.New("auth: could not generate token")

// NewToken returns fresh token material and the hash to persist for it.
func NewToken() (raw string, hash string, err error) {
	key := securecookie.GenerateRandomKey(tokenBytes)
	if key == nil {
		return "", "", errNoEntropy
	}
	raw = base64.RawURLEncoding.EncodeToString(key)
	return raw, HashToken(raw), nil
}

// HashToken is the lookup key stored for a raw token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// WithUserID stores user id in context.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDCtxKey, userID)
}

// UserIDFromContext extracts user id.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userIDCtxKey).(uint)
	return id, ok && id != 0
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Resolver maps a raw access token to the user it was issued for.
type Resolver interface {
	ResolveAccessToken(ctx context.Context, raw string) (uint, error)
}

// RequireAuth rejects requests without a valid access token with 401.
func RequireAuth(resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r)
			if !ok {
				httpx.Detail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
				return
			}
			uid, err := resolver.ResolveAccessToken(r.Context(), raw)
			if err != nil {
				httpx.Error(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), uid)))
		})
	}
}

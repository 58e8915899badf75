// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/atinyakov/FinTrack/internal/models"
	"go.uber.org/zap"
)

type ctxKey string

const identityKey ctxKey = "identity"

var (
	errMissingToken   = errors.New("authorization header missing")
	errMalformedToken = errors.New("authorization header is not a bearer token")
)

// TokenValidator resolves an access token to the identity it was issued for.
type TokenValidator interface {
	Validate(token string) (models.Identity, error)
}

// BearerAuth is a middleware that requires a valid "Authorization: Bearer
// <token>" header.
//
// A missing header, a header of any other shape and a token that fails
// validation all produce the same 401 response; the cause is only logged.
// On success the token's identity is stored in the request context and can
// be read with IdentityFromContext. No database lookup is made.
func BearerAuth(tokens TokenValidator, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r.Header.Get("Authorization"))
			if err == nil {
				var id models.Identity
				if id, err = tokens.Validate(token); err == nil {
					ctx := context.WithValue(r.Context(), identityKey, id)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			log.Debug("request rejected", zap.String("path", r.URL.Path), zap.Error(err))
			unauthorized(w)
		})
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || token == "" || strings.Contains(token, " ") {
		return "", errMalformedToken
	}
	return token, nil
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}

// IdentityFromContext returns the caller resolved by BearerAuth.
// ok is false when the request did not pass through BearerAuth.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok
}

// WithIdentity returns a copy of ctx carrying id, as BearerAuth does.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

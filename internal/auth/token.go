package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/FinTrack/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is how long an access token stays valid when no TTL is configured.
const DefaultTokenTTL = time.Hour

// ErrInvalidToken is returned for every token that must be refused:
// bad signature, elapsed expiry, unexpected algorithm or garbage input.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the signed payload of an access token.
type Claims struct {
	UserID int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 access tokens with a single
// process-wide secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a TokenManager. A non-positive ttl falls back to
// DefaultTokenTTL.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for id that expires after the configured TTL.
func (m *TokenManager) Issue(id models.Identity) (string, time.Time, error) {
	return m.IssueWithTTL(id, m.ttl)
}

// IssueWithTTL signs a token for id that expires after ttl.
func (m *TokenManager) IssueWithTTL(id models.Identity, ttl time.Duration) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		UserID: id.ID,
		Name:   id.Name,
		Email:  id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate verifies token and returns the identity it carries. Any failure
// is reported as ErrInvalidToken.
func (m *TokenManager) Validate(token string) (models.Identity, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return models.Identity{}, ErrInvalidToken
	}
	if claims.UserID <= 0 {
		return models.Identity{}, ErrInvalidToken
	}
	return models.Identity{ID: claims.UserID, Name: claims.Name, Email: claims.Email}, nil
}

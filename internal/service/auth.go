// Package service provides authentication and entry business logic,
// delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/FinTrack/internal/auth"
	"github.com/atinyakov/FinTrack/internal/models"
)

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	// CreateUser stores a new user. It returns models.ErrConflict when the
	// email is taken.
	CreateUser(ctx context.Context, name, email, passwordHash string) (*models.User, error)
	// GetUserByEmail returns models.ErrNotFound for an unknown email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(id models.Identity) (string, time.Time, error)
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// AuthService registers users and logs them in.
type AuthService struct {
	repo   AuthRepository
	tokens TokenIssuer
}

// NewAuthService constructs an AuthService.
func NewAuthService(repo AuthRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{repo: repo, tokens: tokens}
}

// RegisterUser hashes password and stores a new user. Emails are compared
// case-insensitively.
func (s *AuthService) RegisterUser(ctx context.Context, name, email, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateUser(ctx, strings.TrimSpace(name), normalizeEmail(email), hash)
}

// Login checks the credentials and issues an access token for the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.tokens.Issue(models.Identity{ID: user.ID, Name: user.Name, Email: user.Email})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, ExpiresAt: exp}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

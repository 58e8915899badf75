// Package http provides the HTTP handlers and routing of the FinTrack API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/atinyakov/FinTrack/internal/models"
	"github.com/atinyakov/FinTrack/internal/service"
	"go.uber.org/zap"
)

// AuthService defines the account operations required by UserHandler.
type AuthService interface {
	// RegisterUser creates an account; models.ErrConflict if the email is taken.
	RegisterUser(ctx context.Context, name, email, password string) (*models.User, error)
	// Login returns service.ErrInvalidCredentials on a bad email or password.
	Login(ctx context.Context, email, password string) (*service.Session, error)
}

// UserHandler handles registration and login.
type UserHandler struct {
	svc AuthService
	log *zap.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(svc AuthService, log *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: log}
}

// loginResponse is the body of a successful login.
type loginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Register handles POST /api/users. It expects {name, email, password} and
// answers 201 with the public fields of the new user.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := validationErr(req.Validate()); err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.svc.RegisterUser(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("user registered", zap.Int64("user_id", u.ID))
	writeJSON(w, http.StatusCreated, models.Identity{ID: u.ID, Name: u.Name, Email: u.Email})
}

// Login handles POST /api/users/login. It expects {email, password} and
// answers a bearer access token.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := validationErr(req.Validate()); err != nil {
		h.fail(w, r, err)
		return
	}

	sess, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: sess.Token,
		TokenType:   "Bearer",
		ExpiresAt:   sess.ExpiresAt.UTC(),
	})
}

func (h *UserHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeServiceError(w, r, h.log, err, "user not found")
}

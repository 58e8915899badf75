package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/FinTrack/internal/models"
	"github.com/atinyakov/FinTrack/internal/service"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeServiceError maps a service or repository error to a response.
// notFound is the message used for models.ErrNotFound. Unexpected errors
// are logged and reported as 500 without details.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error, notFound string) {
	var verr service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid data", Details: verr})
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, models.ErrConflict):
		writeError(w, http.StatusBadRequest, "email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	default:
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

package http

import (
	"net/http"

	"github.com/atinyakov/FinTrack/internal/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Handlers groups everything NewRouter mounts.
type Handlers struct {
	Users        *UserHandler
	Costs        *EntryHandler
	Receivements *EntryHandler
	DB           Pinger
}

// NewRouter constructs the HTTP handler of the FinTrack API.
//
// Routes:
//
//	GET  /api/healthcheck    database health
//	POST /api/users          register
//	POST /api/users/login    issue an access token
//	/api/costs/...           EntryHandler.Routes, bearer token required
//	/api/receivements/...    EntryHandler.Routes, bearer token required
//
// Every request gets a request id, is logged and is recovered from panics.
// Bodies must be application/json.
func NewRouter(h Handlers, tokens middleware.TokenValidator, corsOrigins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthcheck", HealthCheck(h.DB, logger))
		r.Post("/users", h.Users.Register)
		r.Post("/users/login", h.Users.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(tokens, logger))
			r.Route("/costs", h.Costs.Routes)
			r.Route("/receivements", h.Receivements.Routes)
		})
	})

	return r
}

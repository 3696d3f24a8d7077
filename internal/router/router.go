// Package router sets up all HTTP routes and middleware chains for the
// club API. Reads are public; writes sit behind RequireActor and the
// blog service's role policy.
package router

import (
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"clubsite/internal/handlers"
	"clubsite/internal/middleware"
)

// DefaultRateLimit is the per-IP request budget per minute.
const DefaultRateLimit = 120

// loginRateLimit is the per-IP budget for credential endpoints.
const loginRateLimit = 10

// Deps are the handlers and settings the router wires together.
type Deps struct {
	Actors     middleware.ActorResolver
	Posts      *handlers.Posts
	Categories *handlers.Categories
	Live       *handlers.Live
	Auth       *handlers.Auth
	Accounts   *handlers.Accounts

	// CORSOrigins lists allowed origins. "*" allows any origin but
	// disables credentials.
	CORSOrigins []string
	// RateLimit is requests per minute per IP. Zero uses DefaultRateLimit.
	RateLimit int
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	if d.RateLimit <= 0 {
		d.RateLimit = DefaultRateLimit
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(d.RateLimit, time.Minute))
	r.Use(middleware.LoadActor(d.Actors))

	r.Get("/health", healthHandler)

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", d.Posts.List)
		r.Get("/{idOrSlug}", d.Posts.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireActor)
			r.Post("/", d.Posts.Create)
			r.Put("/{id}", d.Posts.Update)
			r.Delete("/{id}", d.Posts.Delete)
		})
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", d.Categories.List)
		r.With(middleware.RequireActor).Post("/", d.Categories.Create)
	})

	r.Get("/live/posts", d.Live.Posts)

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(loginRateLimit, time.Minute))
			r.Post("/register", d.Auth.Register)
			r.Post("/login", d.Auth.Login)
		})
		r.Post("/logout", d.Auth.Logout)
		r.With(middleware.RequireActor).Get("/me", d.Auth.Me)
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Use(middleware.RequireActor)
		r.Get("/", d.Accounts.List)
		r.Put("/{id}/role", d.Accounts.AssignRole)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

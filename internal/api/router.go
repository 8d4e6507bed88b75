package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/signup", apiHandler.SignupHandler)
		r.Post("/login", apiHandler.LoginHandler)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		// Help works with or without a signed-in student; sessions are
		// only recorded when a valid token is attached.
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.OptionalAuthMiddleware)
			r.Post("/help", apiHandler.HelpHandler)
		})

		// User-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)

			// History routes
			r.Get("/sessions", apiHandler.ListSessionsHandler)
			r.Get("/sessions/{sessionID}", apiHandler.GetSessionHandler)
			r.Delete("/sessions/{sessionID}", apiHandler.DeleteSessionHandler)

			// Settings routes
			r.Get("/preferences", apiHandler.GetPreferencesHandler)
			r.Put("/preferences", apiHandler.SavePreferencesHandler)
		})
	})

	return r
}

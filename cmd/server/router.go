package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/studydeck/internal/api"
	"github.com/phrazzld/studydeck/internal/api/middleware"
)

// setupRouter creates the chi router with the standard middleware stack,
// the health check and the API routes.
func (app *application) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Trace(app.logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	cardHandler := api.NewCardHandler(app.deck, app.reviewLister(), app.subjects, app.clock, app.logger)
	sessionHandler := api.NewSessionHandler(app.sessions, app.clock, app.logger)
	api.Mount(r, cardHandler, sessionHandler)

	return r
}

package api

import "github.com/go-chi/chi/v5"

// Mount registers the card and session routes under /api.
func Mount(r chi.Router, cards *CardHandler, sessions *SessionHandler) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/subjects", cards.ListSubjects)
		r.Get("/stats", cards.GetStats)

		r.Route("/cards", func(r chi.Router) {
			r.Get("/", cards.ListCards)
			r.Get("/due", cards.ListDueCards)
			r.Get("/{id}", cards.GetCard)
			r.Get("/{id}/reviews", cards.ListReviews)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessions.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessions.Get)
				r.Delete("/", sessions.Delete)
				r.Post("/start", sessions.Start)
				r.Post("/reveal", sessions.Reveal)
				r.Post("/grade", sessions.Grade)
				r.Post("/back", sessions.Back)
				r.Post("/forward", sessions.Forward)
				r.Post("/reset", sessions.Reset)
			})
		})
	})
}

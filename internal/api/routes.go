package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/users/{userID}", func(r chi.Router) {
		r.Get("/stats", s.handleUserStats)

		r.Route("/collections/{collectionID}", func(r chi.Router) {
			r.Get("/due", s.handleDueCards)
			r.Get("/progress", s.handleCollectionProgress)

			r.Route("/cards/{cardID}", func(r chi.Router) {
				r.Post("/reviews", s.handleRecordReview)
				r.Post("/mastered", s.handleMarkMastered)
				r.Post("/reset", s.handleResetProgress)
			})
		})
	})
	return r
}

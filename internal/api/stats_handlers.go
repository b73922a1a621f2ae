package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/flashrecall/internal/logger"
)

func (s *Server) handleDueCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	userID := chi.URLParam(r, "userID")
	collectionID := chi.URLParam(r, "collectionID")

	asOf, err := parseAsOf(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	cards, err := s.StatsService.GetCardsForReview(r.Context(), userID, collectionID, asOf)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Debug("returning %d due cards", len(cards))
	writeJSON(w, r, http.StatusOK, envelope{"success": true, "cards": cards})
}

func (s *Server) handleCollectionProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.StatsService.GetCollectionProgress(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "collectionID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, envelope{"success": true, "progress": progress})
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.StatsService.GetUserReviewStats(r.Context(), chi.URLParam(r, "userID"), r.URL.Query().Get("collection"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, envelope{"success": true, "stats": stats})
}

package api

import (
	"net/http"

	"github.com/vytor/flashrecall/internal/errors"
	"github.com/vytor/flashrecall/internal/flashcard"
	"github.com/vytor/flashrecall/internal/logger"
)

type reviewRequest struct {
	Quality *float64 `json:"quality"`
	Grade   string   `json:"grade"`
}

// quality resolves the request to a recall score. Exactly one of quality
// or grade must be set. Numeric scores outside 0-5 or with a fraction are
// clamped and rounded, never rejected.
func (req reviewRequest) quality(log *logger.Logger) (int, error) {
	switch {
	case req.Quality != nil && req.Grade != "":
		return 0, errors.NewBadRequestError("send either quality or grade, not both")
	case req.Quality != nil:
		q, adjusted := flashcard.QualityFromScore(*req.Quality)
		if adjusted {
			log.Warn("quality %g out of range, clamped to %d", *req.Quality, q)
		}
		return q, nil
	case req.Grade != "":
		g, err := flashcard.ParseGrade(req.Grade)
		if err != nil {
			return 0, errors.NewValidationError("grade", "must be one of again, hard, good, easy")
		}
		return g.Quality(), nil
	default:
		return 0, errors.NewValidationError("quality", "quality or grade is required")
	}
}

func (s *Server) handleRecordReview(w http.ResponseWriter, r *http.Request) {
	key := progressKey(r)
	log := logger.FromContext(r.Context()).WithKey(key.UserID, key.CollectionID, key.CardID)

	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	quality, err := req.quality(log)
	if err != nil {
		handleError(w, r, err)
		return
	}

	progress, err := s.ReviewService.RecordReview(r.Context(), key, quality)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("review recorded: quality=%d, next_interval=%d", quality, progress.Interval)
	writeJSON(w, r, http.StatusOK, envelope{"success": true, "progress": progress})
}

func (s *Server) handleMarkMastered(w http.ResponseWriter, r *http.Request) {
	progress, err := s.ReviewService.MarkAsMastered(r.Context(), progressKey(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, envelope{"success": true, "progress": progress})
}

func (s *Server) handleResetProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.ReviewService.ResetProgress(r.Context(), progressKey(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, envelope{"success": true, "progress": progress})
}

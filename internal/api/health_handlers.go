package api

import (
	"context"
	"net/http"

	"github.com/vytor/flashrecall/internal/logger"
)

// handleHealth reports liveness and always returns 200 OK.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, envelope{"status": "ok"})
}

// handleReady returns 200 when the progress store answers a ping, 503 otherwise.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	if s.PingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.PingTimeout)
		defer cancel()
	}

	if err := s.Store.Ping(ctx); err != nil {
		log.Warn("readiness check failed - store: %v", err)
		writeJSON(w, r, http.StatusServiceUnavailable, envelope{"status": "unavailable"})
		return
	}
	writeJSON(w, r, http.StatusOK, envelope{"status": "ready"})
}

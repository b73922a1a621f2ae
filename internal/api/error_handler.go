package api

import (
	"net/http"

	"github.com/vytor/flashrecall/internal/errors"
	"github.com/vytor/flashrecall/internal/logger"
)

// handleError centralizes error handling for HTTP responses
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	appErr := errors.AsAppError(err)

	// Log based on status code
	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else if appErr.Status >= 400 {
		log.Warn("client error: %v", appErr)
	} else {
		log.Debug("error: %v", appErr)
	}

	if appErr.Retryable() {
		w.Header().Set("Retry-After", "1")
	}
	writeJSON(w, r, appErr.Status, envelope{
		"success": false,
		"error": map[string]any{
			"code":      appErr.Code,
			"message":   appErr.Message,
			"retryable": appErr.Retryable(),
		},
	})
}

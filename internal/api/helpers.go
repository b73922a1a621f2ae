package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/flashrecall/internal/errors"
	"github.com/vytor/flashrecall/internal/logger"
	"github.com/vytor/flashrecall/internal/models"
)

const maxBodyBytes = 1 << 16

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}

// decodeJSON reads a single JSON object into dst. An empty body leaves dst
// untouched.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && err != io.EOF {
		return errors.NewBadRequestError("invalid JSON body: " + err.Error())
	}
	return nil
}

func progressKey(r *http.Request) models.ProgressKey {
	return models.ProgressKey{
		UserID:       chi.URLParam(r, "userID"),
		CollectionID: chi.URLParam(r, "collectionID"),
		CardID:       chi.URLParam(r, "cardID"),
	}
}

// parseAsOf reads the optional as_of query parameter. The zero time means
// "use the service clock".
func parseAsOf(r *http.Request) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("as_of"))
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.NewValidationError("as_of", "must be an RFC3339 timestamp")
	}
	return t, nil
}

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashrecall/internal/api"
	"github.com/vytor/flashrecall/internal/logger"
	"github.com/vytor/flashrecall/internal/models"
	"github.com/vytor/flashrecall/internal/repository"
	"github.com/vytor/flashrecall/internal/repository/memory"
	"github.com/vytor/flashrecall/internal/services"
	"github.com/vytor/flashrecall/internal/testutil"
	"github.com/vytor/flashrecall/internal/testutil/mocks"
)

var now = time.Date(2026, time.April, 4, 10, 0, 0, 0, time.UTC)

const cardPath = "/users/u1/collections/spanish/cards/hola"

func newServer(repo repository.ProgressRepository) http.Handler {
	clock := testutil.FixedClock(now)
	s := &api.Server{
		ReviewService: services.NewReviewService(repo, clock, time.Second),
		StatsService:  services.NewStatsService(repo, clock, time.Second),
		Store:         repo,
		PingTimeout:   time.Second,
	}
	return s.Routes()
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestRecordReviewEndpoint(t *testing.T) {
	h := newServer(memory.NewProgressRepository())

	rec, body := do(t, h, http.MethodPost, cardPath+"/reviews", `{"quality": 5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	progress := body["progress"].(map[string]any)
	assert.Equal(t, "hola", progress["card_id"])
	assert.Equal(t, float64(1), progress["interval"])
	assert.Equal(t, float64(1), progress["repetitions"])
	assert.InDelta(t, 2.6, progress["ease_factor"], 1e-9)

	rec, body = do(t, h, http.MethodPost, cardPath+"/reviews", `{"grade": "Good"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	progress = body["progress"].(map[string]any)
	assert.Equal(t, float64(6), progress["interval"])
	assert.Equal(t, float64(3), progress["quality"])
}

func TestRecordReviewClampsNumericQuality(t *testing.T) {
	cases := map[string]struct {
		body    string
		quality float64
	}{
		"above range":    {`{"quality": 99}`, 5},
		"below range":    {`{"quality": -4}`, 0},
		"fraction up":    {`{"quality": 4.7}`, 5},
		"fraction down":  {`{"quality": 2.4}`, 2},
		"exponent":       {`{"quality": 1e20}`, 5},
		"beyond int64":   {`{"quality": 99999999999999999999}`, 5},
		"negative large": {`{"quality": -1e20}`, 0},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := newServer(memory.NewProgressRepository())

			rec, body := do(t, h, http.MethodPost, cardPath+"/reviews", tc.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			progress := body["progress"].(map[string]any)
			assert.Equal(t, tc.quality, progress["quality"])
			assert.Equal(t, float64(1), progress["total_reviews"])
		})
	}
}

func TestRecordReviewRejectsBadInput(t *testing.T) {
	h := newServer(memory.NewProgressRepository())

	cases := map[string]struct {
		body string
		code string
	}{
		"empty":       {``, "VALIDATION_ERROR"},
		"both":        {`{"quality": 3, "grade": "good"}`, "BAD_REQUEST"},
		"bad grade":   {`{"grade": "perfect"}`, "VALIDATION_ERROR"},
		"bad json":    {`{"quality": `, "BAD_REQUEST"},
		"unknown key": {`{"score": 3}`, "BAD_REQUEST"},
		"wrong type":  {`{"quality": "three"}`, "BAD_REQUEST"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec, body := do(t, h, http.MethodPost, cardPath+"/reviews", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, false, body["success"])
			errBody := body["error"].(map[string]any)
			assert.Equal(t, tc.code, errBody["code"])
			assert.Equal(t, false, errBody["retryable"])
		})
	}
}

func TestMasteredAndReset(t *testing.T) {
	h := newServer(memory.NewProgressRepository())

	rec, body := do(t, h, http.MethodPost, cardPath+"/mastered", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])

	do(t, h, http.MethodPost, cardPath+"/reviews", `{"quality": 4}`)

	rec, body = do(t, h, http.MethodPost, cardPath+"/mastered", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(365), body["progress"].(map[string]any)["interval"])

	rec, body = do(t, h, http.MethodPost, cardPath+"/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	progress := body["progress"].(map[string]any)
	assert.Equal(t, float64(0), progress["repetitions"])
	assert.Equal(t, float64(0), progress["total_reviews"])
}

func TestReadEndpoints(t *testing.T) {
	h := newServer(memory.NewProgressRepository())
	do(t, h, http.MethodPost, cardPath+"/reviews", `{"quality": 5}`)
	do(t, h, http.MethodPost, "/users/u1/collections/spanish/cards/adios/reset", "")

	rec, body := do(t, h, http.MethodGet, "/users/u1/collections/spanish/due", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cards := body["cards"].([]any)
	require.Len(t, cards, 1)
	assert.Equal(t, "adios", cards[0].(map[string]any)["card_id"])
	assert.Equal(t, "spanish", cards[0].(map[string]any)["collection_id"])

	rec, body = do(t, h, http.MethodGet, "/users/u1/collections/spanish/due?as_of="+now.AddDate(0, 0, 2).Format(time.RFC3339), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["cards"].([]any), 2)

	rec, _ = do(t, h, http.MethodGet, "/users/u1/collections/spanish/due?as_of=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = do(t, h, http.MethodGet, "/users/u1/collections/spanish/progress", "")
	require.Equal(t, http.StatusOK, rec.Code)
	progress := body["progress"].(map[string]any)
	assert.Len(t, progress, 2)
	assert.Equal(t, float64(100), progress["hola"].(map[string]any)["success_rate"])

	rec, body = do(t, h, http.MethodGet, "/users/u1/stats?collection=spanish", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := body["stats"].(map[string]any)
	assert.Equal(t, float64(2), stats["total_cards"])
	assert.Equal(t, float64(1), stats["due_today"])
	assert.Equal(t, float64(1), stats["learning"])
	assert.Equal(t, float64(1), stats["new_cards"])
}

func TestStoreUnavailable(t *testing.T) {
	repo := new(mocks.MockProgressRepository)
	repo.On("Get", mock.Anything, mock.Anything).Return(nil, stderrors.New("connection reset"))
	repo.On("Ping", mock.Anything).Return(stderrors.New("connection reset"))
	h := newServer(repo)

	rec, body := do(t, h, http.MethodPost, cardPath+"/reviews", `{"quality": 3}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "STORE_UNAVAILABLE", errBody["code"])
	assert.Equal(t, true, errBody["retryable"])

	rec, body = do(t, h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", body["status"])
}

// panickingReviews blows up inside a handler.
type panickingReviews struct {
	services.ReviewService
}

func (panickingReviews) RecordReview(context.Context, models.ProgressKey, int) (*models.CardProgress, error) {
	panic("nil pointer in review path")
}

func TestPanicIsRecoveredWithRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := logger.Default()
	logger.SetDefault(logger.New(logger.WithOutput(&buf), logger.WithLevel(logger.DEBUG), logger.WithColors(false)))
	defer logger.SetDefault(prev)

	repo := memory.NewProgressRepository()
	s := &api.Server{
		ReviewService: panickingReviews{},
		StatsService:  services.NewStatsService(repo, testutil.FixedClock(now), 0),
		Store:         repo,
	}

	req := httptest.NewRequest(http.MethodPost, cardPath+"/reviews", strings.NewReader(`{"quality": 3}`))
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body["error"].(map[string]any)["code"])

	var serverError, completed string
	for _, line := range strings.Split(buf.String(), "\n") {
		switch {
		case strings.Contains(line, "panic recovered"):
			serverError = line
		case strings.Contains(line, "request completed with server error"):
			completed = line
		}
	}
	assert.Contains(t, serverError, "request_id=req-123")
	assert.Contains(t, completed, "request_id=req-123")
	assert.Contains(t, completed, "status=500")
}

func TestHealthAndReady(t *testing.T) {
	h := newServer(memory.NewProgressRepository())

	rec, body := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	rec, body = do(t, h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vytor/flashrecall/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	database, err := db.Open(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	return database
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// FixedClock returns a clock that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// Clock is a settable clock for tests that need time to move.
type Clock struct {
	current time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{current: start}
}

func (c *Clock) Now() time.Time { return c.current }

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) { c.current = c.current.Add(d) }

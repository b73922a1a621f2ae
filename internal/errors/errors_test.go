package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/flashrecall/internal/errors"
)

func TestNewStoreError(t *testing.T) {
	cause := stderrors.New("connection refused")

	err := errors.NewStoreError("write", cause)

	assert.Equal(t, errors.ErrCodeStoreUnavailable, err.Code)
	assert.Equal(t, 503, err.Status)
	assert.True(t, err.Retryable())
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "progress store write failed")
}

func TestRetryable(t *testing.T) {
	assert.False(t, errors.NewNotFoundError("card progress", "k").Retryable())
	assert.False(t, errors.NewValidationError("card_id", "must not be empty").Retryable())
	assert.False(t, errors.NewInternalError(stderrors.New("boom")).Retryable())
}

func TestAsAppError(t *testing.T) {
	nf := errors.NewNotFoundError("card progress", "u/c/k")
	wrapped := fmt.Errorf("mark mastered: %w", nf)

	assert.Same(t, nf, errors.AsAppError(wrapped))

	plain := errors.AsAppError(stderrors.New("boom"))
	assert.Equal(t, errors.ErrCodeInternal, plain.Code)
	assert.Equal(t, 500, plain.Status)
}

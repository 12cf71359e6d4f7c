package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	err := Newf(ErrItemNotFound, http.StatusNotFound, "item %d", 7)

	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.Equal(t, "item not found: item 7", err.Error())
	assert.Equal(t, http.StatusNotFound, HTTPStatusCode(err))
}

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrItemNotFound, http.StatusNotFound},
		{ErrWordNotFound, http.StatusNotFound},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrAlreadyVoted, http.StatusConflict},
		{ErrVotingClosed, http.StatusConflict},
		{ErrRangeLookup, http.StatusConflict},
		{ErrStoreUnavailable, http.StatusServiceUnavailable},
		{ErrTimeout, http.StatusServiceUnavailable},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatusCode(tt.err), "error %v", tt.err)
	}
}

func TestHTTPStatusCode_Wrapped(t *testing.T) {
	// Sentinels survive fmt wrapping, the way store errors travel up.
	err := fmt.Errorf("zadd items:score: connection refused: %w", ErrStoreUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatusCode(err))

	// An AppError's explicit status wins over the sentinel mapping.
	appErr := New(ErrRangeLookup, http.StatusConflict, "lower bound vanished")
	wrapped := fmt.Errorf("suggest: %w", appErr)
	assert.Equal(t, http.StatusConflict, HTTPStatusCode(wrapped))
}

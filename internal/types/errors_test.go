package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScannerError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ScannerError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewError(BACKEND_NOT_FOUND, "backend missing"),
			expected: "[BACKEND_NOT_FOUND] backend missing",
		},
		{
			name:     "with cause",
			err:      WrapError(BACKEND_CALL_FAILED, "call failed", errors.New("connection refused")),
			expected: "[BACKEND_CALL_FAILED] call failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestScannerError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := WrapError(DB_QUERY_FAILED, "query failed", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestScannerError_Is(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewError(FEED_LOOKUP_FAILED, "no price"))

	assert.True(t, errors.Is(err, NewError(FEED_LOOKUP_FAILED, "other message")))
	assert.False(t, errors.Is(err, NewError(FEED_UNAVAILABLE, "no price")))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewRetryableError(BACKEND_RATE_LIMITED, "slow down")))
	assert.False(t, IsRetryable(NewError(BACKEND_UNAUTHORIZED, "bad key")))
	assert.False(t, IsRetryable(errors.New("plain error")))

	wrapped := fmt.Errorf("outer: %w", WrapRetryableError(FEED_LOOKUP_FAILED, "timeout", errors.New("deadline")))
	assert.True(t, IsRetryable(wrapped))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ORCH_ALL_FAILED, CodeOf(NewError(ORCH_ALL_FAILED, "nothing succeeded")))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in       string
		expected Direction
	}{
		{"BULLISH", DirectionBullish},
		{"bullish", DirectionBullish},
		{"up", DirectionBullish},
		{"BEARISH", DirectionBearish},
		{"down", DirectionBearish},
		{"NEUTRAL", DirectionNeutral},
		{"sideways", DirectionNeutral},
		{"", DirectionNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseDirection(tt.in))
		})
	}
}

func TestNewPredictionID(t *testing.T) {
	a := NewPredictionID("BTC", DirectionBullish, "anthropic", testTime(1))
	b := NewPredictionID("BTC", DirectionBullish, "anthropic", testTime(2))
	c := NewPredictionID("ETH", DirectionBullish, "anthropic", testTime(1))

	require.NotEqual(t, a, b, "same content at different times must differ")
	require.NotEqual(t, a, c, "different content must differ")
	assert.False(t, a.IsZero())

	// Same content shares the hash prefix.
	assert.Equal(t, a.String()[:16], b.String()[:16])
}

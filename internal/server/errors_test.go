package server

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/interview-conductor/internal/interview"
	"github.com/jonathan/interview-conductor/internal/ratelimit"
	"github.com/jonathan/interview-conductor/internal/scoring"
	"github.com/jonathan/interview-conductor/internal/store"
	"github.com/jonathan/interview-conductor/internal/types"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "duplicate score", err: &store.DuplicateScoreError{}, want: http.StatusConflict},
		{name: "concurrent turn", err: &interview.ConcurrencyViolationError{}, want: http.StatusConflict},
		{name: "not found", err: &store.NotFoundError{Kind: "score summary"}, want: http.StatusNotFound},
		{name: "throttled", err: &ratelimit.ThrottledError{Class: ratelimit.OpScoring, RetryAfter: time.Second}, want: http.StatusTooManyRequests},
		{name: "malformed scoring output", err: &scoring.ScoringFormatError{DimensionKey: "x"}, want: http.StatusUnprocessableEntity},
		{name: "empty transcript", err: &scoring.EmptyTranscriptError{}, want: http.StatusUnprocessableEntity},
		{name: "invalid override", err: &store.InvalidOverrideError{Message: "m"}, want: http.StatusBadRequest},
		{name: "bad rubric", err: &types.ConfigurationError{Message: "weights"}, want: http.StatusBadRequest},
		{name: "turn generation failed", err: &interview.TurnGenerationError{Message: "m"}, want: http.StatusBadGateway},
		{name: "scoring call failed", err: &scoring.DimensionCallError{DimensionKey: "x"}, want: http.StatusBadGateway},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

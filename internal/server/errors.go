// Package server provides the HTTP REST API for the interview conductor.
package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/interview-conductor/internal/interview"
	"github.com/jonathan/interview-conductor/internal/ratelimit"
	"github.com/jonathan/interview-conductor/internal/scoring"
	"github.com/jonathan/interview-conductor/internal/store"
	"github.com/jonathan/interview-conductor/internal/types"
)

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	var (
		duplicate   *store.DuplicateScoreError
		concurrency *interview.ConcurrencyViolationError
		notFound    *store.NotFoundError
		throttled   *ratelimit.ThrottledError
		badFormat   *scoring.ScoringFormatError
		emptyScript *scoring.EmptyTranscriptError
		badOverride *store.InvalidOverrideError
		badConfig   *types.ConfigurationError
		turnFailed  *interview.TurnGenerationError
		callFailed  *scoring.DimensionCallError
	)

	switch {
	case errors.As(err, &duplicate), errors.As(err, &concurrency):
		return http.StatusConflict
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &throttled):
		return http.StatusTooManyRequests
	case errors.As(err, &badFormat), errors.As(err, &emptyScript):
		return http.StatusUnprocessableEntity
	case errors.As(err, &badOverride), errors.As(err, &badConfig):
		return http.StatusBadRequest
	case errors.As(err, &turnFailed), errors.As(err, &callFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

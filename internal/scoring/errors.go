package scoring

import (
	"fmt"

	"github.com/google/uuid"
)

// EmptyTranscriptError indicates scoring was requested for an interview with
// no candidate speech. Scoring never fabricates results for silence.
type EmptyTranscriptError struct {
	InterviewID uuid.UUID
}

func (e *EmptyTranscriptError) Error() string {
	return fmt.Sprintf("interview %s has no candidate speech to score", e.InterviewID)
}

// ScoringFormatError indicates the model returned output that does not
// conform to the dimension score contract. The pipeline fails hard on this
// rather than persisting a partial or guessed score.
type ScoringFormatError struct {
	DimensionKey string
	Message      string
	Cause        error
}

func (e *ScoringFormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed scoring output for dimension %s: %s: %v", e.DimensionKey, e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed scoring output for dimension %s: %s", e.DimensionKey, e.Message)
}

func (e *ScoringFormatError) Unwrap() error {
	return e.Cause
}

// DimensionCallError indicates the model call for one dimension failed at
// the transport level (network, quota, provider error).
type DimensionCallError struct {
	DimensionKey string
	Cause        error
}

func (e *DimensionCallError) Error() string {
	return fmt.Sprintf("scoring call failed for dimension %s: %v", e.DimensionKey, e.Cause)
}

func (e *DimensionCallError) Unwrap() error {
	return e.Cause
}

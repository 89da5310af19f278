package interview

import (
	"fmt"

	"github.com/google/uuid"
)

// TurnGenerationError represents a transient failure of the generation
// backend during a turn. The turn may be retried with identical state.
type TurnGenerationError struct {
	Message string
	Cause   error
}

func (e *TurnGenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("turn generation failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("turn generation failed: %s", e.Message)
}

func (e *TurnGenerationError) Unwrap() error {
	return e.Cause
}

// ConcurrencyViolationError indicates a second turn was attempted while one
// is already in flight for the same interview. The attempt is rejected, not
// queued.
type ConcurrencyViolationError struct {
	InterviewID uuid.UUID
}

func (e *ConcurrencyViolationError) Error() string {
	return fmt.Sprintf("interview %s already has a turn in flight", e.InterviewID)
}

package store

import (
	"fmt"

	"github.com/google/uuid"
)

// DuplicateScoreError indicates a second write of a scoring record that the
// store holds at most one of: the per-interview summary, or a dimension
// score for a (interview, dimension) pair. Callers wanting a rescore must
// go through the override path instead.
type DuplicateScoreError struct {
	InterviewID  uuid.UUID
	DimensionKey string // empty when the summary itself is the duplicate
}

func (e *DuplicateScoreError) Error() string {
	if e.DimensionKey != "" {
		return fmt.Sprintf("dimension %q already scored for interview %s", e.DimensionKey, e.InterviewID)
	}
	return fmt.Sprintf("score summary already exists for interview %s", e.InterviewID)
}

// InvalidOverrideError indicates a human override request missing its audit
// trail (reviewer identity or reason) or amending nothing.
type InvalidOverrideError struct {
	Message string
}

func (e *InvalidOverrideError) Error() string {
	return fmt.Sprintf("invalid score override: %s", e.Message)
}

// NotFoundError indicates the requested record does not exist.
type NotFoundError struct {
	Kind string // "score summary", "transcript", ...
	ID   uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found for %s", e.Kind, e.ID)
}

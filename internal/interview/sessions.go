package interview

import (
	"sync"

	"github.com/google/uuid"
)

// SessionRegistry enforces per-interview turn serialization: at most one
// orchestrator turn may be in flight per interview. Unrelated interviews
// proceed fully in parallel.
type SessionRegistry struct {
	mu     sync.Mutex
	active map[uuid.UUID]bool
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{active: make(map[uuid.UUID]bool)}
}

// Acquire marks the interview as mid-turn. Returns a
// *ConcurrencyViolationError if a turn is already in flight.
func (r *SessionRegistry) Acquire(interviewID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active[interviewID] {
		return &ConcurrencyViolationError{InterviewID: interviewID}
	}
	r.active[interviewID] = true
	return nil
}

// Release marks the interview's turn as finished.
func (r *SessionRegistry) Release(interviewID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, interviewID)
}

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/interview-conductor/internal/types"
)

// MemoryStore is an in-memory Store used in tests and local development.
// It enforces the same uniqueness and override rules as the Postgres store.
type MemoryStore struct {
	mu         sync.RWMutex
	summaries  map[uuid.UUID]types.InterviewScoreSummary
	dimensions map[uuid.UUID]map[string]types.DimensionScore
	segments   map[uuid.UUID][]types.TranscriptSegment
	progress   map[uuid.UUID][]types.Progress
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		summaries:  make(map[uuid.UUID]types.InterviewScoreSummary),
		dimensions: make(map[uuid.UUID]map[string]types.DimensionScore),
		segments:   make(map[uuid.UUID][]types.TranscriptSegment),
		progress:   make(map[uuid.UUID][]types.Progress),
	}
}

func (s *MemoryStore) SaveScoreSummary(_ context.Context, summary types.InterviewScoreSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.summaries[summary.InterviewID]; exists {
		return &DuplicateScoreError{InterviewID: summary.InterviewID}
	}
	s.summaries[summary.InterviewID] = summary
	return nil
}

func (s *MemoryStore) SaveDimensionScores(_ context.Context, scores []types.DimensionScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Reject the whole batch before writing any of it.
	for _, score := range scores {
		if existing, ok := s.dimensions[score.InterviewID]; ok {
			if _, dup := existing[score.DimensionKey]; dup {
				return &DuplicateScoreError{InterviewID: score.InterviewID, DimensionKey: score.DimensionKey}
			}
		}
	}
	for _, score := range scores {
		if s.dimensions[score.InterviewID] == nil {
			s.dimensions[score.InterviewID] = make(map[string]types.DimensionScore)
		}
		s.dimensions[score.InterviewID][score.DimensionKey] = score
	}
	return nil
}

func (s *MemoryStore) SaveResult(_ context.Context, summary types.InterviewScoreSummary, scores []types.DimensionScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check every row before writing any so a rejected result leaves no
	// partial state behind.
	if _, exists := s.summaries[summary.InterviewID]; exists {
		return &DuplicateScoreError{InterviewID: summary.InterviewID}
	}
	for _, score := range scores {
		if existing, ok := s.dimensions[score.InterviewID]; ok {
			if _, dup := existing[score.DimensionKey]; dup {
				return &DuplicateScoreError{InterviewID: score.InterviewID, DimensionKey: score.DimensionKey}
			}
		}
	}

	s.summaries[summary.InterviewID] = summary
	for _, score := range scores {
		if s.dimensions[score.InterviewID] == nil {
			s.dimensions[score.InterviewID] = make(map[string]types.DimensionScore)
		}
		s.dimensions[score.InterviewID][score.DimensionKey] = score
	}
	return nil
}

func (s *MemoryStore) GetScoreSummary(_ context.Context, interviewID uuid.UUID) (*types.InterviewScoreSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.summaries[interviewID]
	if !ok {
		return nil, &NotFoundError{Kind: "score summary", ID: interviewID}
	}
	return &summary, nil
}

func (s *MemoryStore) GetDimensionScores(_ context.Context, interviewID uuid.UUID) ([]types.DimensionScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byKey := s.dimensions[interviewID]
	scores := make([]types.DimensionScore, 0, len(byKey))
	for _, score := range byKey {
		scores = append(scores, score)
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].DimensionKey < scores[j].DimensionKey })
	return scores, nil
}

func (s *MemoryStore) ApplyHumanOverride(_ context.Context, interviewID uuid.UUID, override types.HumanOverride) (*types.InterviewScoreSummary, error) {
	if err := validateOverride(override); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	summary, ok := s.summaries[interviewID]
	if !ok {
		return nil, &NotFoundError{Kind: "score summary", ID: interviewID}
	}

	if override.AppliedAt.IsZero() {
		override.AppliedAt = time.Now().UTC()
	}
	if override.OverallScore != nil {
		summary.OverallScore = *override.OverallScore
	}
	if override.Summary != nil {
		summary.NarrativeSummary = *override.Summary
	}
	if override.Feedback != nil {
		summary.CandidateFeedback = *override.Feedback
	}
	summary.Override = &override

	s.summaries[interviewID] = summary
	return &summary, nil
}

func (s *MemoryStore) AppendTranscriptSegments(_ context.Context, interviewID uuid.UUID, segments []types.TranscriptSegment) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.segments[interviewID] = append(s.segments[interviewID], segments...)
	return len(s.segments[interviewID]), nil
}

func (s *MemoryStore) GetTranscript(_ context.Context, interviewID uuid.UUID) (types.Transcript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.segments[interviewID]
	transcript := make(types.Transcript, len(stored))
	copy(transcript, stored)
	return transcript, nil
}

func (s *MemoryStore) SaveProgressSnapshot(_ context.Context, interviewID uuid.UUID, progress types.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Snapshot the covered-competency map so later detector runs cannot
	// mutate stored history.
	covered := make(map[string]bool, len(progress.CompetenciesCovered))
	for k, v := range progress.CompetenciesCovered {
		covered[k] = v
	}
	progress.CompetenciesCovered = covered

	s.progress[interviewID] = append(s.progress[interviewID], progress)
	return nil
}

func (s *MemoryStore) GetLatestProgress(_ context.Context, interviewID uuid.UUID) (*types.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshots := s.progress[interviewID]
	if len(snapshots) == 0 {
		return nil, &NotFoundError{Kind: "progress snapshot", ID: interviewID}
	}
	latest := snapshots[len(snapshots)-1]
	return &latest, nil
}

func (s *MemoryStore) Close() {}

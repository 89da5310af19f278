// Package store persists interview scoring results, transcripts, and
// conversation progress snapshots.
//
// The store enforces the result contract: at most one score summary per
// interview, at most one dimension score per (interview, dimension) pair,
// and amendments only through audited human overrides that preserve the
// original model and rubric version stamps.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/interview-conductor/internal/types"
)

// Store is the persistence contract for interview results.
type Store interface {
	// SaveScoreSummary inserts the aggregate summary for an interview.
	// A second write for the same interview returns *DuplicateScoreError.
	SaveScoreSummary(ctx context.Context, summary types.InterviewScoreSummary) error

	// SaveDimensionScores inserts per-dimension scores. A score for an
	// already-scored (interview, dimension) pair returns
	// *DuplicateScoreError; nothing from the batch is written in that case.
	SaveDimensionScores(ctx context.Context, scores []types.DimensionScore) error

	// SaveResult persists the summary and its dimension scores as a single
	// atomic write. Either every row lands or none does, so a failure can
	// never leave a summary without its dimensions or vice versa. A
	// duplicate anywhere returns *DuplicateScoreError with nothing written.
	SaveResult(ctx context.Context, summary types.InterviewScoreSummary, scores []types.DimensionScore) error

	// GetScoreSummary returns the summary for an interview, or
	// *NotFoundError if it has not been scored.
	GetScoreSummary(ctx context.Context, interviewID uuid.UUID) (*types.InterviewScoreSummary, error)

	// GetDimensionScores returns all dimension scores for an interview,
	// ordered by dimension key. An unscored interview yields an empty slice.
	GetDimensionScores(ctx context.Context, interviewID uuid.UUID) ([]types.DimensionScore, error)

	// ApplyHumanOverride amends the stored summary. The override must carry
	// reviewer identity and reason and amend at least one field, otherwise
	// *InvalidOverrideError. The model and rubric version stamps of the
	// original run are never touched. Returns the amended summary.
	ApplyHumanOverride(ctx context.Context, interviewID uuid.UUID, override types.HumanOverride) (*types.InterviewScoreSummary, error)

	// AppendTranscriptSegments appends segments to the interview transcript
	// with monotonically increasing sequence numbers. Returns the sequence
	// number assigned to the last appended segment.
	AppendTranscriptSegments(ctx context.Context, interviewID uuid.UUID, segments []types.TranscriptSegment) (int, error)

	// GetTranscript returns the stored transcript in sequence order. An
	// interview with no segments yields an empty transcript.
	GetTranscript(ctx context.Context, interviewID uuid.UUID) (types.Transcript, error)

	// SaveProgressSnapshot records the conversation progress after a turn,
	// for audit and session recovery.
	SaveProgressSnapshot(ctx context.Context, interviewID uuid.UUID, progress types.Progress) error

	// GetLatestProgress returns the most recent progress snapshot, or
	// *NotFoundError if none has been saved.
	GetLatestProgress(ctx context.Context, interviewID uuid.UUID) (*types.Progress, error)

	// Close releases any resources held by the store.
	Close()
}

// validateOverride checks the audit requirements shared by all Store
// implementations.
func validateOverride(override types.HumanOverride) error {
	if err := override.Validate(); err != nil {
		return &InvalidOverrideError{Message: err.Error()}
	}
	if override.OverallScore == nil && override.Summary == nil && override.Feedback == nil {
		return &InvalidOverrideError{Message: "override amends nothing"}
	}
	return nil
}

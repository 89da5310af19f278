package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-conductor/internal/types"
)

func sampleSummary(interviewID uuid.UUID) types.InterviewScoreSummary {
	return types.InterviewScoreSummary{
		ID:                uuid.New(),
		InterviewID:       interviewID,
		OverallScore:      64,
		NarrativeSummary:  "Solid technical depth, uneven communication.",
		CandidateFeedback: "You explained your projects clearly.",
		AntiCheatRisk:     types.RiskLow,
		ModelVersion:      "gemini-2.5-pro",
		RubricVersion:     "abc123def456",
		CreatedAt:         time.Now().UTC(),
	}
}

func TestSaveScoreSummary_RejectsSecondWrite(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	interviewID := uuid.New()

	require.NoError(t, s.SaveScoreSummary(ctx, sampleSummary(interviewID)))

	err := s.SaveScoreSummary(ctx, sampleSummary(interviewID))
	var dup *DuplicateScoreError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, interviewID, dup.InterviewID)
	assert.Empty(t, dup.DimensionKey)

	// A different interview is unaffected.
	assert.NoError(t, s.SaveScoreSummary(ctx, sampleSummary(uuid.New())))
}

func TestSaveDimensionScores_UniquePerDimension(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	interviewID := uuid.New()

	first := []types.DimensionScore{
		{ID: uuid.New(), InterviewID: interviewID, DimensionKey: "communication", Score: 6, WeightUsed: 0.5},
		{ID: uuid.New(), InterviewID: interviewID, DimensionKey: "technical_skills", Score: 8, WeightUsed: 0.5},
	}
	require.NoError(t, s.SaveDimensionScores(ctx, first))

	// A batch containing one duplicate writes nothing.
	second := []types.DimensionScore{
		{ID: uuid.New(), InterviewID: interviewID, DimensionKey: "culture_fit", Score: 7, WeightUsed: 0.5},
		{ID: uuid.New(), InterviewID: interviewID, DimensionKey: "communication", Score: 9, WeightUsed: 0.5},
	}
	err := s.SaveDimensionScores(ctx, second)
	var dup *DuplicateScoreError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "communication", dup.DimensionKey)

	scores, err := s.GetDimensionScores(ctx, interviewID)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "communication", scores[0].DimensionKey)
	assert.Equal(t, float64(6), scores[0].Score)
	assert.Equal(t, "technical_skills", scores[1].DimensionKey)
}

func TestSaveResult_Atomic(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	interviewID := uuid.New()

	dims := []types.DimensionScore{
		{ID: uuid.New(), InterviewID: interviewID, DimensionKey: "communication", Score: 6, WeightUsed: 0.5},
		{ID: uuid.New(), InterviewID: interviewID, DimensionKey: "technical_skills", Score: 8, WeightUsed: 0.5},
	}
	require.NoError(t, s.SaveResult(ctx, sampleSummary(interviewID), dims))

	stored, err := s.GetScoreSummary(ctx, interviewID)
	require.NoError(t, err)
	assert.Equal(t, 64, stored.OverallScore)

	scores, err := s.GetDimensionScores(ctx, interviewID)
	require.NoError(t, err)
	assert.Len(t, scores, 2)
}

func TestSaveResult_DimensionConflictWritesNothing(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	interviewID := uuid.New()

	// A stray dimension row exists but no summary does.
	require.NoError(t, s.SaveDimensionScores(ctx, []types.DimensionScore{
		{ID: uuid.New(), InterviewID: interviewID, DimensionKey: "communication", Score: 5, WeightUsed: 0.5},
	}))

	err := s.SaveResult(ctx, sampleSummary(interviewID), []types.DimensionScore{
		{ID: uuid.New(), InterviewID: interviewID, DimensionKey: "communication", Score: 9, WeightUsed: 0.5},
		{ID: uuid.New(), InterviewID: interviewID, DimensionKey: "culture_fit", Score: 7, WeightUsed: 0.5},
	})
	var dup *DuplicateScoreError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "communication", dup.DimensionKey)

	// Nothing landed: no summary, and the conflicting batch left no rows.
	_, err = s.GetScoreSummary(ctx, interviewID)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))

	scores, err := s.GetDimensionScores(ctx, interviewID)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, float64(5), scores[0].Score)
}

func TestSaveResult_DuplicateSummaryRejected(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	interviewID := uuid.New()
	require.NoError(t, s.SaveScoreSummary(ctx, sampleSummary(interviewID)))

	err := s.SaveResult(ctx, sampleSummary(interviewID), []types.DimensionScore{
		{ID: uuid.New(), InterviewID: interviewID, DimensionKey: "communication", Score: 6, WeightUsed: 1},
	})
	var dup *DuplicateScoreError
	require.True(t, errors.As(err, &dup))

	scores, err := s.GetDimensionScores(ctx, interviewID)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestGetScoreSummary_NotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.GetScoreSummary(context.Background(), uuid.New())
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
}

func TestApplyHumanOverride(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	interviewID := uuid.New()
	require.NoError(t, s.SaveScoreSummary(ctx, sampleSummary(interviewID)))

	newScore := 80
	updated, err := s.ApplyHumanOverride(ctx, interviewID, types.HumanOverride{
		By:           "reviewer@example.com",
		Reason:       "transcript showed stronger system design than scored",
		OverallScore: &newScore,
	})
	require.NoError(t, err)

	assert.Equal(t, 80, updated.OverallScore)
	require.NotNil(t, updated.Override)
	assert.Equal(t, "reviewer@example.com", updated.Override.By)
	assert.False(t, updated.Override.AppliedAt.IsZero())

	// Original stamps survive the override.
	assert.Equal(t, "gemini-2.5-pro", updated.ModelVersion)
	assert.Equal(t, "abc123def456", updated.RubricVersion)

	// Untouched fields survive too.
	assert.Equal(t, "Solid technical depth, uneven communication.", updated.NarrativeSummary)

	stored, err := s.GetScoreSummary(ctx, interviewID)
	require.NoError(t, err)
	assert.Equal(t, 80, stored.OverallScore)
}

func TestApplyHumanOverride_TextAmendments(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	interviewID := uuid.New()
	require.NoError(t, s.SaveScoreSummary(ctx, sampleSummary(interviewID)))

	newSummary := "Amended narrative."
	newFeedback := "Amended feedback."
	updated, err := s.ApplyHumanOverride(ctx, interviewID, types.HumanOverride{
		By:       "lead@example.com",
		Reason:   "narrative misread a sarcastic answer",
		Summary:  &newSummary,
		Feedback: &newFeedback,
	})
	require.NoError(t, err)

	assert.Equal(t, "Amended narrative.", updated.NarrativeSummary)
	assert.Equal(t, "Amended feedback.", updated.CandidateFeedback)
	assert.Equal(t, 64, updated.OverallScore)
}

func TestApplyHumanOverride_Invalid(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	interviewID := uuid.New()
	require.NoError(t, s.SaveScoreSummary(ctx, sampleSummary(interviewID)))

	newScore := 90
	tests := []struct {
		name     string
		override types.HumanOverride
	}{
		{name: "missing by", override: types.HumanOverride{Reason: "r", OverallScore: &newScore}},
		{name: "missing reason", override: types.HumanOverride{By: "someone", OverallScore: &newScore}},
		{name: "amends nothing", override: types.HumanOverride{By: "someone", Reason: "r"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ApplyHumanOverride(ctx, interviewID, tt.override)
			var inv *InvalidOverrideError
			require.True(t, errors.As(err, &inv))
		})
	}

	// The summary is untouched after rejected overrides.
	stored, err := s.GetScoreSummary(ctx, interviewID)
	require.NoError(t, err)
	assert.Equal(t, 64, stored.OverallScore)
	assert.Nil(t, stored.Override)
}

func TestApplyHumanOverride_MissingSummary(t *testing.T) {
	s := NewMemoryStore()
	newScore := 70

	_, err := s.ApplyHumanOverride(context.Background(), uuid.New(), types.HumanOverride{
		By: "someone", Reason: "r", OverallScore: &newScore,
	})
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
}

func TestAppendTranscriptSegments_Sequencing(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	interviewID := uuid.New()

	seq, err := s.AppendTranscriptSegments(ctx, interviewID, []types.TranscriptSegment{
		{Speaker: types.SpeakerInterviewer, Content: "Welcome.", StartTimeMS: 0},
		{Speaker: types.SpeakerCandidate, Content: "Thanks.", StartTimeMS: 2000},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, seq)

	seq, err = s.AppendTranscriptSegments(ctx, interviewID, []types.TranscriptSegment{
		{Speaker: types.SpeakerInterviewer, Content: "First question.", StartTimeMS: 5000},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, seq)

	transcript, err := s.GetTranscript(ctx, interviewID)
	require.NoError(t, err)
	require.Len(t, transcript, 3)
	assert.Equal(t, "Welcome.", transcript[0].Content)
	assert.Equal(t, "First question.", transcript[2].Content)
}

func TestProgressSnapshots(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	interviewID := uuid.New()

	_, err := s.GetLatestProgress(ctx, interviewID)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))

	covered := map[string]bool{"kubernetes": true}
	require.NoError(t, s.SaveProgressSnapshot(ctx, interviewID, types.Progress{
		QuestionsAsked: 1, Phase: types.PhaseIntroduction, CompetenciesCovered: covered,
	}))
	require.NoError(t, s.SaveProgressSnapshot(ctx, interviewID, types.Progress{
		QuestionsAsked: 2, Phase: types.PhaseTechnical, CompetenciesCovered: covered,
	}))

	// Mutating the caller's map after saving must not change stored history.
	covered["postgresql"] = true

	latest, err := s.GetLatestProgress(ctx, interviewID)
	require.NoError(t, err)
	assert.Equal(t, 2, latest.QuestionsAsked)
	assert.Equal(t, types.PhaseTechnical, latest.Phase)
	assert.Equal(t, map[string]bool{"kubernetes": true}, latest.CompetenciesCovered)
}

package scoring

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-conductor/internal/llm"
	"github.com/jonathan/interview-conductor/internal/ratelimit"
	"github.com/jonathan/interview-conductor/internal/types"
)

var dimensionKeyPattern = regexp.MustCompile(`"dimension_key": "([a-z0-9_]+)"`)

// scoringMock returns a mock whose GenerateJSON answers each dimension
// prompt with the given score and quotes.
func scoringMock(score float64, quotes string) *MockLLMClient {
	return &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			m := dimensionKeyPattern.FindStringSubmatch(prompt)
			if m == nil {
				return "", errors.New("prompt missing dimension key")
			}
			return fmt.Sprintf(`{"dimension_key": %q, "score": %g, "evidence": "Observed in answers.", "cited_quotes": [%s]}`,
				m[1], score, quotes), nil
		},
	}
}

func sampleTranscript() types.Transcript {
	return types.Transcript{
		{Speaker: types.SpeakerInterviewer, Content: "Tell me about a recent project.", StartTimeMS: 0},
		{Speaker: types.SpeakerCandidate, Content: "I led the migration to Kubernetes last year.", StartTimeMS: 4000},
		{Speaker: types.SpeakerInterviewer, Content: "What was the hardest part?", StartTimeMS: 12000},
		{Speaker: types.SpeakerCandidate, Content: "Keeping the database failover invisible to users.", StartTimeMS: 16000},
	}
}

func TestScore_EmptyTranscript(t *testing.T) {
	p, err := NewPipeline(scoringMock(5, ""), nil, nil)
	require.NoError(t, err)

	id := uuid.New()
	tests := []struct {
		name       string
		transcript types.Transcript
	}{
		{name: "nil transcript", transcript: nil},
		{name: "interviewer only", transcript: types.Transcript{
			{Speaker: types.SpeakerInterviewer, Content: "Hello?", StartTimeMS: 0},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Score(context.Background(), Request{InterviewID: id, JobTitle: "Engineer", Transcript: tt.transcript})
			var ete *EmptyTranscriptError
			require.True(t, errors.As(err, &ete))
			assert.Equal(t, id, ete.InterviewID)
		})
	}
}

func TestScore_DefaultRubricMidpointScores(t *testing.T) {
	// Every dimension at 5/10 must aggregate to exactly 50 regardless of
	// the weight distribution, since weights sum to 1.
	p, err := NewPipeline(scoringMock(5, ""), nil, nil)
	require.NoError(t, err)

	res, err := p.Score(context.Background(), Request{
		InterviewID: uuid.New(),
		JobTitle:    "Backend Engineer",
		Transcript:  sampleTranscript(),
	})
	require.NoError(t, err)

	assert.Equal(t, 50, res.Summary.OverallScore)
	assert.Len(t, res.Dimensions, len(types.DefaultRubric().Dimensions))
	assert.Equal(t, types.DefaultRubric().Version(), res.Summary.RubricVersion)
	assert.Equal(t, "mock-model-advanced", res.Summary.ModelVersion)
	assert.Equal(t, types.RiskLow, res.Summary.AntiCheatRisk)
	assert.NotEmpty(t, res.Summary.NarrativeSummary)
	assert.NotEmpty(t, res.Summary.CandidateFeedback)
}

func TestScore_WeightedAggregation(t *testing.T) {
	rubric := &types.Rubric{Dimensions: []types.RubricDimension{
		{Key: "technical_skills", Label: "Technical Skills", Weight: 0.4},
		{Key: "communication", Label: "Communication", Weight: 0.3},
		{Key: "culture_fit", Label: "Culture Fit", Weight: 0.3},
	}}
	perDimension := map[string]float64{
		"technical_skills": 8,
		"communication":    6,
		"culture_fit":      7,
	}

	mock := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			m := dimensionKeyPattern.FindStringSubmatch(prompt)
			require.NotNil(t, m)
			return fmt.Sprintf(`{"dimension_key": %q, "score": %g, "evidence": "e", "cited_quotes": []}`,
				m[1], perDimension[m[1]]), nil
		},
	}

	p, err := NewPipeline(mock, nil, rubric)
	require.NoError(t, err)

	res, err := p.Score(context.Background(), Request{InterviewID: uuid.New(), JobTitle: "SRE", Transcript: sampleTranscript()})
	require.NoError(t, err)

	// 0.8*0.4 + 0.6*0.3 + 0.7*0.3 = 0.71
	assert.Equal(t, 71, res.Summary.OverallScore)

	for _, d := range res.Dimensions {
		assert.InDelta(t, perDimension[d.DimensionKey], d.Score, 1e-9)
		assert.Equal(t, rubric.Dimension(d.DimensionKey).Weight, d.WeightUsed)
	}
}

func TestScore_DropsFabricatedQuotes(t *testing.T) {
	quotes := `"I led the   MIGRATION to Kubernetes last year.", "I single-handedly rewrote everything in a weekend"`
	p, err := NewPipeline(scoringMock(7, quotes), nil, nil)
	require.NoError(t, err)

	res, err := p.Score(context.Background(), Request{InterviewID: uuid.New(), JobTitle: "Engineer", Transcript: sampleTranscript()})
	require.NoError(t, err)

	for _, d := range res.Dimensions {
		require.Len(t, d.CitedQuotes, 1)
		assert.Contains(t, d.CitedQuotes[0], "Kubernetes")
	}
}

func TestScore_MalformedOutput(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{name: "score out of range", output: `{"dimension_key": "vocabulary", "score": 14, "evidence": "e", "cited_quotes": []}`},
		{name: "missing fields", output: `{"dimension_key": "vocabulary", "score": 5}`},
		{name: "not json", output: `the candidate did well`},
		{name: "wrong dimension", output: `{"dimension_key": "unrelated_key", "score": 5, "evidence": "e", "cited_quotes": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockLLMClient{
				GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
					return tt.output, nil
				},
			}
			p, err := NewPipeline(mock, nil, nil)
			require.NoError(t, err)

			_, err = p.Score(context.Background(), Request{InterviewID: uuid.New(), JobTitle: "Engineer", Transcript: sampleTranscript()})
			var sfe *ScoringFormatError
			require.True(t, errors.As(err, &sfe), "got %v", err)
		})
	}
}

func TestScore_CallFailureAbortsRun(t *testing.T) {
	calls := 0
	mock := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			calls++
			m := dimensionKeyPattern.FindStringSubmatch(prompt)
			if m[1] == "communication" {
				return "", errors.New("quota exceeded")
			}
			return fmt.Sprintf(`{"dimension_key": %q, "score": 6, "evidence": "e", "cited_quotes": []}`, m[1]), nil
		},
	}
	p, err := NewPipeline(mock, nil, nil)
	require.NoError(t, err)

	res, err := p.Score(context.Background(), Request{InterviewID: uuid.New(), JobTitle: "Engineer", Transcript: sampleTranscript()})
	require.Nil(t, res)

	var dce *DimensionCallError
	require.True(t, errors.As(err, &dce))
	assert.Equal(t, "communication", dce.DimensionKey)
}

func TestScore_Throttled(t *testing.T) {
	limiter := ratelimit.NewLimiter(&ratelimit.Config{
		Enabled: true,
		Classes: map[ratelimit.OpClass]ratelimit.ClassConfig{
			ratelimit.OpScoring: {Limit: 1, Window: time.Hour, Burst: 1},
		},
	})

	p, err := NewPipeline(scoringMock(5, ""), limiter, nil)
	require.NoError(t, err)

	req := Request{InterviewID: uuid.New(), JobTitle: "Engineer", Transcript: sampleTranscript()}
	_, err = p.Score(context.Background(), req)
	require.NoError(t, err)

	_, err = p.Score(context.Background(), req)
	var te *ratelimit.ThrottledError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, ratelimit.OpScoring, te.Class)
	assert.Greater(t, te.RetryAfter, time.Duration(0))
}

func TestNewPipeline_RejectsInvalidRubric(t *testing.T) {
	rubric := &types.Rubric{Dimensions: []types.RubricDimension{
		{Key: "only_dimension", Label: "Only", Weight: 0.5},
	}}

	_, err := NewPipeline(scoringMock(5, ""), nil, rubric)
	require.Error(t, err)
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name   string
		scores []types.DimensionScore
		want   int
	}{
		{name: "empty", scores: nil, want: 0},
		{
			name: "perfect",
			scores: []types.DimensionScore{
				{Score: 10, WeightUsed: 0.5},
				{Score: 10, WeightUsed: 0.5},
			},
			want: 100,
		},
		{
			name: "rounds half up",
			scores: []types.DimensionScore{
				{Score: 5.05, WeightUsed: 1.0},
			},
			want: 51,
		},
		{
			name: "mixed weights",
			scores: []types.DimensionScore{
				{Score: 8, WeightUsed: 0.4},
				{Score: 6, WeightUsed: 0.3},
				{Score: 7, WeightUsed: 0.3},
			},
			want: 71,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overall(tt.scores))
		})
	}
}

// Package scoring turns completed interview transcripts into per-dimension
// scores, a weighted overall score, and narrative text for both the hiring
// team and the candidate.
package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/interview-conductor/internal/llm"
	"github.com/jonathan/interview-conductor/internal/prompts"
	"github.com/jonathan/interview-conductor/internal/ratelimit"
	"github.com/jonathan/interview-conductor/internal/schemas"
	"github.com/jonathan/interview-conductor/internal/types"
)

// Request carries everything needed to score one completed interview.
type Request struct {
	InterviewID    uuid.UUID
	JobTitle       string
	JobDescription string
	Transcript     types.Transcript
	Signals        []types.AntiCheatSignal
}

// Result is the full scoring output: the aggregate summary plus the
// per-dimension scores it was derived from.
type Result struct {
	Summary    types.InterviewScoreSummary
	Dimensions []types.DimensionScore
}

// Pipeline scores transcripts against a fixed rubric. All dimensions are
// evaluated concurrently; the first failure aborts the run so no partial
// summary is ever produced.
type Pipeline struct {
	client  llm.Client
	limiter *ratelimit.Limiter
	rubric  *types.Rubric
}

// NewPipeline builds a scoring pipeline. A nil rubric selects the default
// rubric; a nil limiter disables throttling. The rubric is validated once
// here so individual Score calls can trust it.
func NewPipeline(client llm.Client, limiter *ratelimit.Limiter, rubric *types.Rubric) (*Pipeline, error) {
	if rubric == nil {
		rubric = types.DefaultRubric()
	}
	if err := rubric.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{client: client, limiter: limiter, rubric: rubric}, nil
}

// Rubric returns the rubric this pipeline scores against.
func (p *Pipeline) Rubric() *types.Rubric {
	return p.rubric
}

// Score evaluates every rubric dimension over the transcript and assembles
// the score summary. Rerunning on the same transcript produces fresh model
// judgments but the same weights, rubric version, and aggregation.
func (p *Pipeline) Score(ctx context.Context, req Request) (*Result, error) {
	transcript := req.Transcript.Sorted()
	if !transcript.HasCandidateSegments() {
		return nil, &EmptyTranscriptError{InterviewID: req.InterviewID}
	}

	if p.limiter != nil {
		if err := p.limiter.Allow(ratelimit.OpScoring); err != nil {
			return nil, err
		}
	}

	candidateText := transcript.CandidateText()
	transcriptText := transcript.Text()
	now := time.Now().UTC()

	dims := p.rubric.Dimensions
	results := make([]types.DimensionScore, len(dims))

	g, gctx := errgroup.WithContext(ctx)
	for i, dim := range dims {
		g.Go(func() error {
			score, err := p.scoreDimension(gctx, req, dim, transcriptText, candidateText, now)
			if err != nil {
				return err
			}
			results[i] = score
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	narrative, feedback, err := p.generateNarratives(ctx, req.JobTitle, results)
	if err != nil {
		return nil, err
	}

	summary := types.InterviewScoreSummary{
		ID:                uuid.New(),
		InterviewID:       req.InterviewID,
		OverallScore:      Overall(results),
		NarrativeSummary:  narrative,
		CandidateFeedback: feedback,
		AntiCheatRisk:     MapRisk(req.Signals),
		ModelVersion:      p.client.GetModel(llm.TierAdvanced),
		RubricVersion:     p.rubric.Version(),
		CreatedAt:         now,
	}

	return &Result{Summary: summary, Dimensions: results}, nil
}

// dimensionOutput is the model's JSON contract for one dimension pass.
type dimensionOutput struct {
	DimensionKey string   `json:"dimension_key"`
	Score        float64  `json:"score"`
	Evidence     string   `json:"evidence"`
	CitedQuotes  []string `json:"cited_quotes"`
}

func (p *Pipeline) scoreDimension(ctx context.Context, req Request, dim types.RubricDimension, transcriptText, candidateText string, now time.Time) (types.DimensionScore, error) {
	template := prompts.MustGet("scoring.json", "score-dimension")
	prompt := prompts.Format(template, map[string]string{
		"JobTitle":             req.JobTitle,
		"JobDescription":       req.JobDescription,
		"DimensionKey":         dim.Key,
		"DimensionLabel":       dim.Label,
		"DimensionDescription": dim.Description,
		"Transcript":           transcriptText,
	})

	raw, err := p.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return types.DimensionScore{}, &DimensionCallError{DimensionKey: dim.Key, Cause: err}
	}

	if err := schemas.ValidateDimensionScore(raw); err != nil {
		return types.DimensionScore{}, &ScoringFormatError{
			DimensionKey: dim.Key,
			Message:      "output does not match dimension score schema",
			Cause:        err,
		}
	}

	var out dimensionOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return types.DimensionScore{}, &ScoringFormatError{
			DimensionKey: dim.Key,
			Message:      "output is not valid JSON",
			Cause:        err,
		}
	}
	if out.DimensionKey != dim.Key {
		return types.DimensionScore{}, &ScoringFormatError{
			DimensionKey: dim.Key,
			Message:      fmt.Sprintf("model scored %q instead", out.DimensionKey),
		}
	}

	return types.DimensionScore{
		ID:           uuid.New(),
		InterviewID:  req.InterviewID,
		DimensionKey: dim.Key,
		Score:        out.Score,
		WeightUsed:   dim.Weight,
		Evidence:     out.Evidence,
		CitedQuotes:  VerifyQuotes(out.CitedQuotes, candidateText),
		CreatedAt:    now,
	}, nil
}

func (p *Pipeline) generateNarratives(ctx context.Context, jobTitle string, scores []types.DimensionScore) (narrative, feedback string, err error) {
	resultsBlock := formatDimensionResults(p.rubric, scores)
	data := map[string]string{
		"JobTitle":         jobTitle,
		"DimensionResults": resultsBlock,
	}

	narrative, err = p.client.GenerateContent(ctx, prompts.Format(prompts.MustGet("scoring.json", "narrative-summary"), data), llm.TierAdvanced)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate narrative summary: %w", err)
	}

	feedback, err = p.client.GenerateContent(ctx, prompts.Format(prompts.MustGet("scoring.json", "candidate-feedback"), data), llm.TierStandard)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate candidate feedback: %w", err)
	}

	return strings.TrimSpace(narrative), strings.TrimSpace(feedback), nil
}

// Overall computes the weighted 0-100 aggregate from per-dimension scores:
// round(100 * sum(score/10 * weight)).
func Overall(scores []types.DimensionScore) int {
	var sum float64
	for _, s := range scores {
		sum += s.Score / 10.0 * s.WeightUsed
	}
	return int(math.Round(sum * 100))
}

func formatDimensionResults(rubric *types.Rubric, scores []types.DimensionScore) string {
	var sb strings.Builder
	for _, s := range scores {
		label := s.DimensionKey
		if dim := rubric.Dimension(s.DimensionKey); dim != nil {
			label = dim.Label
		}
		fmt.Fprintf(&sb, "- %s: %.1f/10 (weight %.2f). %s\n", label, s.Score, s.WeightUsed, s.Evidence)
	}
	return sb.String()
}

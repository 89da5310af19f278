// Package resume condenses raw resume text into the candidate summary the
// interviewer context carries: a display name and a short factual digest.
package resume

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/interview-conductor/internal/llm"
	"github.com/jonathan/interview-conductor/internal/prompts"
	"github.com/jonathan/interview-conductor/internal/ratelimit"
	"github.com/jonathan/interview-conductor/internal/types"
)

// ParseResume extracts a candidate summary from raw resume text using its
// own short-lived client. Callers holding a client should use Parse.
func ParseResume(ctx context.Context, resumeText, apiKey string) (*types.CandidateSummary, error) {
	if apiKey == "" {
		return nil, &APICallError{Message: "API key is required"}
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return nil, &APICallError{
			Message: "failed to create LLM client",
			Cause:   err,
		}
	}
	defer func() { _ = client.Close() }()

	return Parse(ctx, client, nil, resumeText)
}

// Parse extracts a candidate summary from raw resume text. A nil limiter
// disables throttling.
func Parse(ctx context.Context, client llm.Client, limiter *ratelimit.Limiter, resumeText string) (*types.CandidateSummary, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, &ValidationError{Field: "resume_text", Message: "resume text is required"}
	}

	if limiter != nil {
		if err := limiter.Allow(ratelimit.OpResumeParse); err != nil {
			return nil, err
		}
	}

	template := prompts.MustGet("resume.json", "summarize-resume")
	prompt := prompts.Format(template, map[string]string{
		"ResumeText": resumeText,
	})

	// Resume condensation is cheap extraction work
	responseText, err := client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, &APICallError{
			Message: "failed to generate content from LLM",
			Cause:   err,
		}
	}

	summary, err := parseJSONResponse(responseText)
	if err != nil {
		return nil, err
	}

	if err := postProcessSummary(summary); err != nil {
		return nil, err
	}

	return summary, nil
}

// parseJSONResponse parses the JSON response into a CandidateSummary
func parseJSONResponse(jsonText string) (*types.CandidateSummary, error) {
	var out struct {
		Name   string `json:"name"`
		Digest string `json:"digest"`
	}
	if err := json.Unmarshal([]byte(jsonText), &out); err != nil {
		return nil, &ParseError{
			Message: "failed to parse JSON response",
			Cause:   err,
		}
	}

	return &types.CandidateSummary{
		Name:         strings.TrimSpace(out.Name),
		ResumeDigest: strings.TrimSpace(out.Digest),
	}, nil
}

// postProcessSummary validates the extracted summary
func postProcessSummary(summary *types.CandidateSummary) error {
	if summary.Name == "" {
		return &ValidationError{
			Field:   "name",
			Message: "candidate name is required",
		}
	}
	if summary.ResumeDigest == "" {
		return &ValidationError{
			Field:   "digest",
			Message: "resume digest is required",
		}
	}
	return nil
}

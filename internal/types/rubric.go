// Package types provides type definitions for structured data used throughout the interview-conductor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// weightSumTolerance is the allowed deviation from 1.0 for the sum of rubric weights.
const weightSumTolerance = 0.01

// RubricDimension represents one named, weighted axis of candidate evaluation.
type RubricDimension struct {
	Key         string  `json:"key" validate:"required,min=1"`
	Label       string  `json:"label" validate:"required,min=1"`
	Weight      float64 `json:"weight" validate:"gte=0,lte=1"`
	Description string  `json:"description"`
}

// Rubric is the ordered set of dimensions used to score one interview.
// Dimension keys must be unique and weights must sum to 1.0 within tolerance.
type Rubric struct {
	Dimensions []RubricDimension `json:"dimensions" validate:"required,min=1,dive"`
}

// ConfigurationError indicates an invalid rubric supplied at configuration time.
// Rubrics are rejected here, never at scoring time.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// DefaultRubric returns the fixed 8-dimension rubric with default weights.
func DefaultRubric() *Rubric {
	return &Rubric{
		Dimensions: []RubricDimension{
			{Key: "vocabulary", Label: "Vocabulary", Weight: 0.10, Description: "Breadth and precision of professional vocabulary."},
			{Key: "domain_knowledge", Label: "Domain Knowledge", Weight: 0.15, Description: "Depth of knowledge in the role's domain."},
			{Key: "technical_skills", Label: "Technical Skills", Weight: 0.20, Description: "Demonstrated competence in the required technical skills."},
			{Key: "experience_depth", Label: "Experience Depth", Weight: 0.15, Description: "Depth and relevance of prior experience."},
			{Key: "communication", Label: "Communication", Weight: 0.10, Description: "Clarity, structure, and listening in responses."},
			{Key: "culture_fit", Label: "Culture Fit", Weight: 0.10, Description: "Alignment with the company's stated values."},
			{Key: "motivation", Label: "Motivation", Weight: 0.10, Description: "Genuine interest in the role and company."},
			{Key: "confidence", Label: "Confidence", Weight: 0.10, Description: "Composure and conviction when answering."},
		},
	}
}

// Validate checks the rubric structure, key uniqueness, and weight sum.
// Returns a *ConfigurationError on any violation.
func (r *Rubric) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return &ConfigurationError{Message: err.Error()}
	}

	seen := make(map[string]bool, len(r.Dimensions))
	sum := 0.0
	for _, dim := range r.Dimensions {
		key := strings.TrimSpace(dim.Key)
		if seen[key] {
			return &ConfigurationError{Message: fmt.Sprintf("duplicate dimension key %q", key)}
		}
		seen[key] = true
		sum += dim.Weight
	}

	if math.Abs(sum-1.0) > weightSumTolerance {
		return &ConfigurationError{Message: fmt.Sprintf("dimension weights sum to %.4f, expected 1.0 ± %.2f", sum, weightSumTolerance)}
	}

	return nil
}

// Dimension returns the dimension with the given key, or nil if absent.
func (r *Rubric) Dimension(key string) *RubricDimension {
	for i := range r.Dimensions {
		if r.Dimensions[i].Key == key {
			return &r.Dimensions[i]
		}
	}
	return nil
}

// Keys returns the dimension keys in rubric order.
func (r *Rubric) Keys() []string {
	keys := make([]string, 0, len(r.Dimensions))
	for _, dim := range r.Dimensions {
		keys = append(keys, dim.Key)
	}
	return keys
}

// Version returns a stable version stamp derived from the dimension keys and
// weights. Results carry this stamp so later rubric edits stay auditable.
func (r *Rubric) Version() string {
	var sb strings.Builder
	for _, dim := range r.Dimensions {
		fmt.Fprintf(&sb, "%s:%.4f;", dim.Key, dim.Weight)
	}
	digest := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(digest[:])[:12]
}

package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// DimensionScore is the scored result for one rubric dimension of one interview.
// At most one DimensionScore exists per (interview, dimension key).
type DimensionScore struct {
	ID           uuid.UUID `json:"id"`
	InterviewID  uuid.UUID `json:"interview_id"`
	DimensionKey string    `json:"dimension_key"`
	Score        float64   `json:"score"`       // 0-10 scale
	WeightUsed   float64   `json:"weight_used"` // rubric weight snapshot at scoring time
	Evidence     string    `json:"evidence"`
	CitedQuotes  []string  `json:"cited_quotes"`
	CreatedAt    time.Time `json:"created_at"`
}

// RiskLevel is the coarse anti-cheat signal for one interview session.
type RiskLevel string

// Anti-cheat risk levels.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// AntiCheatSignal is one anomaly indicator supplied by the external
// monitoring collaborator. Severity is 0.0 (benign) to 1.0 (severe).
type AntiCheatSignal struct {
	Kind     string  `json:"kind"` // e.g. "latency_anomaly", "generic_answer", "resume_inconsistency"
	Severity float64 `json:"severity"`
	Detail   string  `json:"detail,omitempty"`
}

// HumanOverride records an explicit amendment of an AI-generated score by a
// reviewer. Both reviewer identity and reason are required for audit.
type HumanOverride struct {
	By           string    `json:"by" validate:"required,min=1"`
	Reason       string    `json:"reason" validate:"required,min=1"`
	OverallScore *int      `json:"overall_score,omitempty" validate:"omitempty,gte=0,lte=100"`
	Summary      *string   `json:"summary,omitempty"`
	Feedback     *string   `json:"feedback,omitempty"`
	AppliedAt    time.Time `json:"applied_at"`
}

// Validate validates the override request using the validator.
func (h *HumanOverride) Validate() error {
	validate := validator.New()
	return validate.Struct(h)
}

// InterviewScoreSummary is the single aggregate scoring record for one
// interview. The original model and rubric version stamps are preserved
// even after a human override.
type InterviewScoreSummary struct {
	ID                uuid.UUID      `json:"id"`
	InterviewID       uuid.UUID      `json:"interview_id"`
	OverallScore      int            `json:"overall_score"` // 0-100 weighted aggregate
	NarrativeSummary  string         `json:"narrative_summary"`
	CandidateFeedback string         `json:"candidate_feedback"`
	AntiCheatRisk     RiskLevel      `json:"anti_cheat_risk"`
	ModelVersion      string         `json:"model_version"`
	RubricVersion     string         `json:"rubric_version"`
	Override          *HumanOverride `json:"human_override,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Phase represents a coarse stage of the interview conversation.
// Phases are strictly forward-moving: introduction < technical < behavioral < closing.
type Phase int

// Interview phases in order.
const (
	PhaseIntroduction Phase = iota
	PhaseTechnical
	PhaseBehavioral
	PhaseClosing
)

var phaseNames = map[Phase]string{
	PhaseIntroduction: "introduction",
	PhaseTechnical:    "technical",
	PhaseBehavioral:   "behavioral",
	PhaseClosing:      "closing",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// ParsePhase maps a phase name back to its Phase value.
func ParsePhase(name string) (Phase, error) {
	for p, n := range phaseNames {
		if n == name {
			return p, nil
		}
	}
	return PhaseIntroduction, fmt.Errorf("unknown phase %q", name)
}

// Before reports whether p precedes other in the fixed phase ordering.
func (p Phase) Before(other Phase) bool {
	return p < other
}

// Next returns the following phase. Closing has no successor and returns itself.
func (p Phase) Next() Phase {
	if p >= PhaseClosing {
		return PhaseClosing
	}
	return p + 1
}

// Requirements holds the role requirements extracted during role setup.
// Each list feeds the competency vocabulary used to steer the conversation.
type Requirements struct {
	Skills             []string `json:"skills"`
	Experience         []string `json:"experience"`
	Qualifications     []string `json:"qualifications"`
	Responsibilities   []string `json:"responsibilities"`
	SuggestedQuestions []string `json:"suggested_questions"`
}

// CandidateSummary is the candidate's name plus a resume digest.
// No raw PII beyond the name is carried into the conversation context.
type CandidateSummary struct {
	Name         string `json:"name" validate:"required,min=1"`
	ResumeDigest string `json:"resume_digest"`
}

// Progress tracks interview state mutated by the orchestrator after each turn.
type Progress struct {
	QuestionsAsked      int             `json:"questions_asked"`
	CompetenciesCovered map[string]bool `json:"competencies_covered"`
	Phase               Phase           `json:"phase"`
}

// CoveredList returns the covered competency tags in sorted order.
func (p *Progress) CoveredList() []string {
	tags := make([]string, 0, len(p.CompetenciesCovered))
	for tag, covered := range p.CompetenciesCovered {
		if covered {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

// ConversationContext is the per-interview snapshot of job requirements,
// candidate summary, and interview progress. It is owned by exactly one
// interview session and mutated only by the orchestrator between turns.
type ConversationContext struct {
	JobTitle       string           `json:"job_title" validate:"required,min=1"`
	JobDescription string           `json:"job_description"`
	Requirements   Requirements     `json:"requirements"`
	CompanyValues  []string         `json:"company_values"`
	Candidate      CandidateSummary `json:"candidate"`
	Progress       Progress         `json:"progress"`
}

// NewConversationContext builds a validated context with zeroed progress.
func NewConversationContext(jobTitle, jobDescription string, reqs Requirements, companyValues []string, candidate CandidateSummary) (*ConversationContext, error) {
	cc := &ConversationContext{
		JobTitle:       jobTitle,
		JobDescription: jobDescription,
		Requirements:   reqs,
		CompanyValues:  companyValues,
		Candidate:      candidate,
		Progress: Progress{
			CompetenciesCovered: make(map[string]bool),
			Phase:               PhaseIntroduction,
		},
	}
	if err := cc.Validate(); err != nil {
		return nil, err
	}
	return cc, nil
}

// Validate validates the conversation context using the validator.
func (cc *ConversationContext) Validate() error {
	validate := validator.New()
	if err := validate.Struct(cc); err != nil {
		return fmt.Errorf("invalid conversation context: %w", err)
	}
	return nil
}

// ExtractRequirements derives requirement lists from a raw job description
// when no structured requirements were configured for the role. Sentences
// mentioning experience become skills; the leading sentences become
// responsibilities and the following ones qualifications.
func ExtractRequirements(jobDescription string) Requirements {
	sentences := make([]string, 0)
	for _, s := range strings.Split(jobDescription, ".") {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}

	var reqs Requirements
	for _, s := range sentences {
		if strings.Contains(strings.ToLower(s), "experience") {
			reqs.Skills = append(reqs.Skills, s)
		}
	}
	if len(sentences) > 0 {
		end := min(3, len(sentences))
		reqs.Responsibilities = sentences[:end]
		if len(sentences) > 3 {
			end = min(6, len(sentences))
			reqs.Qualifications = sentences[3:end]
		}
	}
	return reqs
}

// Package interview implements the conversation orchestrator: a phase-aware
// state machine that selects what to ask next, tracks competency coverage,
// and bounds the interview. It is deterministic in structure (phase, budget,
// missing competencies) and non-deterministic only in the wording the
// generation backend produces.
package interview

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/interview-conductor/internal/llm"
	"github.com/jonathan/interview-conductor/internal/prompts"
	"github.com/jonathan/interview-conductor/internal/ratelimit"
	"github.com/jonathan/interview-conductor/internal/types"
)

// Budgets bound the interview's length per phase.
type Budgets struct {
	IntroMinTurns       int // candidate answers required before leaving introduction
	TechnicalMaxTurns   int // technical-phase answers before forcing behavioral
	BehavioralMinTurns  int // behavioral answers required before early close
	TotalCandidateTurns int // hard cap on candidate answers before closing
}

// DefaultBudgets returns the standard interview length: 6 candidate answers.
func DefaultBudgets() Budgets {
	return Budgets{
		IntroMinTurns:       1,
		TechnicalMaxTurns:   3,
		BehavioralMinTurns:  1,
		TotalCandidateTurns: 6,
	}
}

// Turn is the orchestrator's output: the next interviewer utterance plus the
// updated progress. Persisting both is the caller's job.
type Turn struct {
	Utterance string
	Progress  types.Progress
}

// Orchestrator drives the turn-by-turn interview conversation.
type Orchestrator struct {
	client   llm.Client
	limiter  *ratelimit.Limiter
	detector Detector
	budgets  Budgets
	sessions *SessionRegistry
}

// NewOrchestrator creates an orchestrator. A nil detector falls back to the
// keyword detector; a nil limiter disables throttling.
func NewOrchestrator(client llm.Client, limiter *ratelimit.Limiter, detector Detector, budgets Budgets) *Orchestrator {
	if detector == nil {
		detector = NewKeywordDetector()
	}
	return &Orchestrator{
		client:   client,
		limiter:  limiter,
		detector: detector,
		budgets:  budgets,
		sessions: NewSessionRegistry(),
	}
}

// NextTurn produces the next interviewer utterance for the interview and the
// progress update the caller must commit before requesting another turn.
//
// On failure the context's progress is left untouched, so the caller can
// retry the same turn with the same state without double-counting questions.
func (o *Orchestrator) NextTurn(ctx context.Context, interviewID uuid.UUID, cc *types.ConversationContext, transcript types.Transcript) (*Turn, error) {
	if err := o.sessions.Acquire(interviewID); err != nil {
		return nil, err
	}
	defer o.sessions.Release(interviewID)

	if o.limiter != nil {
		if err := o.limiter.Allow(ratelimit.OpInterviewTurn); err != nil {
			return nil, err
		}
	}

	vocabulary := CompetencyVocabulary(cc.Requirements)
	covered := o.detector.Detect(transcript, vocabulary)
	candidateTurns := len(transcript.CandidateSegments())
	phase := o.advancePhase(cc.Progress.Phase, candidateTurns, covered, vocabulary)

	progress := types.Progress{
		QuestionsAsked:      cc.Progress.QuestionsAsked,
		CompetenciesCovered: covered,
		Phase:               phase,
	}

	system := o.buildSystemInstruction(cc, progress, vocabulary)
	history := conversationHistory(transcript)

	utterance, err := o.client.GenerateChat(ctx, system, history, llm.TierStandard)
	if err != nil {
		return nil, &TurnGenerationError{Message: "generation backend call failed", Cause: err}
	}
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil, &TurnGenerationError{Message: "generation backend returned an empty utterance"}
	}

	progress.QuestionsAsked++
	cc.Progress = progress

	return &Turn{Utterance: utterance, Progress: progress}, nil
}

// advancePhase applies the forward-only phase transition rules. The phase
// never regresses, even when competency coverage does.
func (o *Orchestrator) advancePhase(current types.Phase, candidateTurns int, covered map[string]bool, vocabulary []CompetencyTag) types.Phase {
	phase := current

	if phase == types.PhaseIntroduction && candidateTurns >= o.budgets.IntroMinTurns {
		phase = types.PhaseTechnical
	}

	if phase == types.PhaseTechnical {
		technicalTurns := candidateTurns - o.budgets.IntroMinTurns
		if technicalTurns >= o.budgets.TechnicalMaxTurns || allCovered(covered, vocabulary) {
			phase = types.PhaseBehavioral
		}
	}

	if phase == types.PhaseBehavioral {
		behavioralTurns := candidateTurns - o.budgets.IntroMinTurns - o.budgets.TechnicalMaxTurns
		if behavioralTurns >= o.budgets.BehavioralMinTurns && allCovered(covered, vocabulary) {
			phase = types.PhaseClosing
		}
	}

	// Total budget exhaustion forces closing regardless of coverage.
	if candidateTurns >= o.budgets.TotalCandidateTurns {
		phase = types.PhaseClosing
	}

	return phase
}

func allCovered(covered map[string]bool, vocabulary []CompetencyTag) bool {
	if len(vocabulary) == 0 {
		return false
	}
	for _, tag := range vocabulary {
		if !covered[tag.Tag] {
			return false
		}
	}
	return true
}

// buildSystemInstruction renders the per-turn system instruction from the
// current context and progress. It is regenerated fresh every turn and never
// persisted in message history.
func (o *Orchestrator) buildSystemInstruction(cc *types.ConversationContext, progress types.Progress, vocabulary []CompetencyTag) string {
	guidanceKey := "phase-" + progress.Phase.String()
	guidance := prompts.MustGet("interview.json", guidanceKey)

	var missing []string
	for _, tag := range vocabulary {
		if !progress.CompetenciesCovered[tag.Tag] {
			missing = append(missing, tag.Tag)
		}
	}

	template := prompts.MustGet("interview.json", "system-instruction")
	return prompts.Format(template, map[string]string{
		"JobTitle":         cc.JobTitle,
		"JobDescription":   cc.JobDescription,
		"Requirements":     formatRequirements(cc.Requirements),
		"CompanyValues":    joinOr(cc.CompanyValues, "not specified"),
		"CandidateName":    cc.Candidate.Name,
		"CandidateSummary": cc.Candidate.ResumeDigest,
		"QuestionsAsked":   strconv.Itoa(progress.QuestionsAsked),
		"Phase":            progress.Phase.String(),
		"Covered":          joinOr(progress.CoveredList(), "none yet"),
		"Missing":          joinOr(missing, "none"),
		"PhaseGuidance":    guidance,
	})
}

// conversationHistory maps transcript segments to generation-backend messages.
// The interviewer speaks as the model, the candidate as the user. An empty
// transcript seeds the conversation with an opening cue.
func conversationHistory(transcript types.Transcript) []llm.Message {
	sorted := transcript.Sorted()
	if len(sorted) == 0 {
		return []llm.Message{{Role: llm.RoleUser, Content: "The candidate has joined the call. Begin the interview."}}
	}

	history := make([]llm.Message, 0, len(sorted))
	for _, seg := range sorted {
		role := llm.RoleUser
		if seg.Speaker == types.SpeakerInterviewer {
			role = llm.RoleModel
		}
		history = append(history, llm.Message{Role: role, Content: seg.Content})
	}

	// Gemini chat requires the final message to come from the user.
	if history[len(history)-1].Role == llm.RoleModel {
		history = append(history, llm.Message{Role: llm.RoleUser, Content: "(The candidate is waiting for the next question.)"})
	}

	return history
}

func formatRequirements(reqs types.Requirements) string {
	var sb strings.Builder
	section := func(name string, items []string) {
		if len(items) == 0 {
			return
		}
		sb.WriteString(name)
		sb.WriteString(":\n")
		for _, item := range items {
			sb.WriteString("- ")
			sb.WriteString(item)
			sb.WriteString("\n")
		}
	}
	section("Skills", reqs.Skills)
	section("Experience", reqs.Experience)
	section("Qualifications", reqs.Qualifications)
	section("Responsibilities", reqs.Responsibilities)
	section("Suggested questions", reqs.SuggestedQuestions)
	if sb.Len() == 0 {
		return "not specified"
	}
	return sb.String()
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

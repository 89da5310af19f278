package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/interview-conductor/internal/ratelimit"
	"github.com/jonathan/interview-conductor/internal/scoring"
	"github.com/jonathan/interview-conductor/internal/store"
	"github.com/jonathan/interview-conductor/internal/types"
)

// TurnRequest carries the role and candidate context for one interviewer turn.
type TurnRequest struct {
	JobTitle       string                 `json:"job_title"`
	JobDescription string                 `json:"job_description,omitempty"`
	Requirements   *types.Requirements    `json:"requirements,omitempty"`
	CompanyValues  []string               `json:"company_values,omitempty"`
	Candidate      types.CandidateSummary `json:"candidate"`
}

// TurnResponse is the interviewer's next utterance plus updated progress.
type TurnResponse struct {
	InterviewID string         `json:"interview_id"`
	Utterance   string         `json:"utterance"`
	Progress    types.Progress `json:"progress"`
}

// TranscriptRequest appends segments to an interview transcript.
type TranscriptRequest struct {
	Segments []types.TranscriptSegment `json:"segments"`
}

// ScoreRequest triggers scoring of a completed interview.
type ScoreRequest struct {
	JobTitle       string                  `json:"job_title"`
	JobDescription string                  `json:"job_description,omitempty"`
	Signals        []types.AntiCheatSignal `json:"anti_cheat_signals,omitempty"`
}

// OverrideRequest amends a stored score summary with an audit trail.
type OverrideRequest struct {
	By           string  `json:"by"`
	Reason       string  `json:"reason"`
	OverallScore *int    `json:"overall_score,omitempty"`
	Summary      *string `json:"summary,omitempty"`
	Feedback     *string `json:"feedback,omitempty"`
}

// ReportResponse is the full interview report: summary, dimension scores,
// and the transcript they were derived from.
type ReportResponse struct {
	Summary    *types.InterviewScoreSummary `json:"summary"`
	Dimensions []types.DimensionScore       `json:"dimension_scores"`
	Transcript types.Transcript             `json:"transcript"`
}

func (s *Server) interviewID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid interview ID: "+err.Error())
		return uuid.Nil, false
	}
	return id, true
}

// handleNextTurn generates the interviewer's next utterance for an interview.
func (s *Server) handleNextTurn(w http.ResponseWriter, r *http.Request) {
	interviewID, ok := s.interviewID(w, r)
	if !ok {
		return
	}

	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.JobTitle == "" {
		s.errorResponse(w, http.StatusBadRequest, "job_title is required")
		return
	}

	// Requirements fall back to extraction from the raw description.
	reqs := types.ExtractRequirements(req.JobDescription)
	if req.Requirements != nil {
		reqs = *req.Requirements
	}

	cc, err := types.NewConversationContext(req.JobTitle, req.JobDescription, reqs, req.CompanyValues, req.Candidate)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	// Resume progress from the last snapshot so restarted sessions keep
	// their phase and coverage. Only a missing snapshot means a fresh
	// interview; any other store failure must not reset the phase.
	progress, err := s.store.GetLatestProgress(r.Context(), interviewID)
	switch {
	case err == nil:
		cc.Progress = *progress
	case errors.As(err, new(*store.NotFoundError)):
		// First turn, zeroed progress stands.
	default:
		s.domainError(w, err)
		return
	}

	transcript, err := s.store.GetTranscript(r.Context(), interviewID)
	if err != nil {
		s.domainError(w, err)
		return
	}

	turn, err := s.orchestrator.NextTurn(r.Context(), interviewID, cc, transcript)
	if err != nil {
		s.domainError(w, err)
		return
	}

	// Persist the interviewer's utterance and the new progress. Failures
	// here lose durability, not the response.
	startMS := int64(0)
	if len(transcript) > 0 {
		startMS = transcript[len(transcript)-1].StartTimeMS + 1
	}
	if _, err := s.store.AppendTranscriptSegments(r.Context(), interviewID, []types.TranscriptSegment{
		{Speaker: types.SpeakerInterviewer, Content: turn.Utterance, StartTimeMS: startMS},
	}); err != nil {
		s.domainError(w, err)
		return
	}
	if err := s.store.SaveProgressSnapshot(r.Context(), interviewID, turn.Progress); err != nil {
		s.domainError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, TurnResponse{
		InterviewID: interviewID.String(),
		Utterance:   turn.Utterance,
		Progress:    turn.Progress,
	})
}

// handleAppendTranscript ingests transcript segments for an interview.
func (s *Server) handleAppendTranscript(w http.ResponseWriter, r *http.Request) {
	interviewID, ok := s.interviewID(w, r)
	if !ok {
		return
	}

	if s.limiter != nil {
		if err := s.limiter.Allow(ratelimit.OpTranscriptIngest); err != nil {
			s.domainError(w, err)
			return
		}
	}

	var req TranscriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Segments) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "segments is required")
		return
	}
	for _, seg := range req.Segments {
		if seg.Speaker != types.SpeakerInterviewer && seg.Speaker != types.SpeakerCandidate {
			s.errorResponse(w, http.StatusBadRequest, "unknown speaker: "+string(seg.Speaker))
			return
		}
		if seg.Content == "" {
			s.errorResponse(w, http.StatusBadRequest, "segment content is required")
			return
		}
	}

	lastSeq, err := s.store.AppendTranscriptSegments(r.Context(), interviewID, req.Segments)
	if err != nil {
		s.domainError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"interview_id": interviewID.String(),
		"last_seq":     lastSeq,
	})
}

// handleGetTranscript returns the stored transcript in sequence order.
func (s *Server) handleGetTranscript(w http.ResponseWriter, r *http.Request) {
	interviewID, ok := s.interviewID(w, r)
	if !ok {
		return
	}

	transcript, err := s.store.GetTranscript(r.Context(), interviewID)
	if err != nil {
		s.domainError(w, err)
		return
	}
	if transcript == nil {
		transcript = types.Transcript{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"interview_id": interviewID.String(),
		"segments":     transcript,
	})
}

// handleScore runs the scoring pipeline over the stored transcript and
// persists the results.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	interviewID, ok := s.interviewID(w, r)
	if !ok {
		return
	}

	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.JobTitle == "" {
		s.errorResponse(w, http.StatusBadRequest, "job_title is required")
		return
	}

	// Reject a rescore before spending model calls.
	if _, err := s.store.GetScoreSummary(r.Context(), interviewID); err == nil {
		s.domainError(w, &store.DuplicateScoreError{InterviewID: interviewID})
		return
	}

	transcript, err := s.store.GetTranscript(r.Context(), interviewID)
	if err != nil {
		s.domainError(w, err)
		return
	}

	result, err := s.scorer.Score(r.Context(), scoring.Request{
		InterviewID:    interviewID,
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		Transcript:     transcript,
		Signals:        req.Signals,
	})
	if err != nil {
		s.domainError(w, err)
		return
	}

	// Summary and dimensions must land together: a partial write would
	// make the rescore guard reject retries of a result that was never
	// fully stored.
	if err := s.store.SaveResult(r.Context(), result.Summary, result.Dimensions); err != nil {
		s.domainError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, ReportResponse{
		Summary:    &result.Summary,
		Dimensions: result.Dimensions,
		Transcript: transcript,
	})
}

// handleReport assembles the stored report for an interview.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	interviewID, ok := s.interviewID(w, r)
	if !ok {
		return
	}

	summary, err := s.store.GetScoreSummary(r.Context(), interviewID)
	if err != nil {
		s.domainError(w, err)
		return
	}
	dimensions, err := s.store.GetDimensionScores(r.Context(), interviewID)
	if err != nil {
		s.domainError(w, err)
		return
	}
	transcript, err := s.store.GetTranscript(r.Context(), interviewID)
	if err != nil {
		s.domainError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, ReportResponse{
		Summary:    summary,
		Dimensions: dimensions,
		Transcript: transcript,
	})
}

// handleOverride applies an audited human override to a score summary.
func (s *Server) handleOverride(w http.ResponseWriter, r *http.Request) {
	interviewID, ok := s.interviewID(w, r)
	if !ok {
		return
	}

	var req OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	summary, err := s.store.ApplyHumanOverride(r.Context(), interviewID, types.HumanOverride{
		By:           req.By,
		Reason:       req.Reason,
		OverallScore: req.OverallScore,
		Summary:      req.Summary,
		Feedback:     req.Feedback,
	})
	if err != nil {
		s.domainError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, summary)
}

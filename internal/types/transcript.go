package types

import (
	"sort"
	"strings"
)

// Speaker identifies who produced a transcript segment.
type Speaker string

// Known speakers.
const (
	SpeakerInterviewer Speaker = "interviewer"
	SpeakerCandidate   Speaker = "candidate"
)

// TranscriptSegment is one speaker-tagged utterance in an interview.
// Segments are append-only and immutable once written; corrections are made
// by appending a later segment, never by mutating history.
type TranscriptSegment struct {
	Speaker     Speaker  `json:"speaker"`
	Content     string   `json:"content"`
	StartTimeMS int64    `json:"start_time_ms"`
	EndTimeMS   *int64   `json:"end_time_ms,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
}

// Transcript is an ordered list of segments for one interview.
type Transcript []TranscriptSegment

// Sorted returns a copy of the transcript ordered by start time.
// The original slice is not modified.
func (t Transcript) Sorted() Transcript {
	out := make(Transcript, len(t))
	copy(out, t)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTimeMS < out[j].StartTimeMS
	})
	return out
}

// CandidateSegments returns only the candidate-spoken segments, in order.
func (t Transcript) CandidateSegments() Transcript {
	out := make(Transcript, 0, len(t))
	for _, seg := range t.Sorted() {
		if seg.Speaker == SpeakerCandidate {
			out = append(out, seg)
		}
	}
	return out
}

// HasCandidateSegments reports whether any segment was spoken by the candidate.
func (t Transcript) HasCandidateSegments() bool {
	for _, seg := range t {
		if seg.Speaker == SpeakerCandidate {
			return true
		}
	}
	return false
}

// Text returns the full transcript text in start-time order, one segment per line.
func (t Transcript) Text() string {
	var sb strings.Builder
	for i, seg := range t.Sorted() {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(string(seg.Speaker))
		sb.WriteString(": ")
		sb.WriteString(seg.Content)
	}
	return sb.String()
}

// CandidateText returns the concatenated candidate speech in start-time order.
func (t Transcript) CandidateText() string {
	var parts []string
	for _, seg := range t.CandidateSegments() {
		parts = append(parts, seg.Content)
	}
	return strings.Join(parts, "\n")
}

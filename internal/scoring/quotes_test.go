package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/interview-conductor/internal/types"
)

func TestVerifyQuotes(t *testing.T) {
	candidateText := "I led the migration to Kubernetes last year.\nKeeping the database failover invisible to users."

	tests := []struct {
		name   string
		quotes []string
		want   []string
	}{
		{
			name:   "exact match",
			quotes: []string{"I led the migration to Kubernetes last year."},
			want:   []string{"I led the migration to Kubernetes last year."},
		},
		{
			name:   "case and whitespace differences tolerated",
			quotes: []string{"i LED the   migration to kubernetes last year."},
			want:   []string{"i LED the   migration to kubernetes last year."},
		},
		{
			name:   "fabricated quote dropped",
			quotes: []string{"I invented Kubernetes."},
			want:   []string{},
		},
		{
			name:   "paraphrase dropped",
			quotes: []string{"I moved our services to Kubernetes"},
			want:   []string{},
		},
		{
			name:   "mixed kept and dropped",
			quotes: []string{"Keeping the database failover invisible to users.", "I shipped it alone"},
			want:   []string{"Keeping the database failover invisible to users."},
		},
		{
			name:   "empty and blank quotes dropped",
			quotes: []string{"", "   "},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyQuotes(tt.quotes, candidateText))
		})
	}
}

func TestVerifyQuotes_InterviewerSpeechNotEvidence(t *testing.T) {
	// The scoring pipeline passes candidate-only text, so a quote the model
	// lifted from the interviewer's question does not verify.
	transcript := types.Transcript{
		{Speaker: types.SpeakerInterviewer, Content: "Did you design the failover yourself?", StartTimeMS: 0},
		{Speaker: types.SpeakerCandidate, Content: "Yes, with one teammate.", StartTimeMS: 1000},
	}

	got := VerifyQuotes(
		[]string{"Did you design the failover yourself?", "Yes, with one teammate."},
		transcript.CandidateText(),
	)
	assert.Equal(t, []string{"Yes, with one teammate."}, got)
}

func TestVerifyQuotes_SpansSegmentBoundary(t *testing.T) {
	// Newlines normalize to spaces, so a quote spanning two consecutive
	// answers still verifies: both halves were really said.
	candidateText := "First answer.\nSecond answer."
	got := VerifyQuotes([]string{"First answer. Second answer."}, candidateText)
	assert.Len(t, got, 1)
}

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranscript_Sorted(t *testing.T) {
	transcript := Transcript{
		{Speaker: SpeakerCandidate, Content: "second", StartTimeMS: 2000},
		{Speaker: SpeakerInterviewer, Content: "first", StartTimeMS: 1000},
	}

	sorted := transcript.Sorted()
	assert.Equal(t, "first", sorted[0].Content)
	assert.Equal(t, "second", sorted[1].Content)
	// Original untouched
	assert.Equal(t, "second", transcript[0].Content)
}

func TestTranscript_HasCandidateSegments(t *testing.T) {
	onlyInterviewer := Transcript{
		{Speaker: SpeakerInterviewer, Content: "Tell me about yourself.", StartTimeMS: 0},
	}
	assert.False(t, onlyInterviewer.HasCandidateSegments())

	mixed := append(onlyInterviewer, TranscriptSegment{
		Speaker: SpeakerCandidate, Content: "Sure.", StartTimeMS: 5000,
	})
	assert.True(t, mixed.HasCandidateSegments())
}

func TestTranscript_CandidateText(t *testing.T) {
	transcript := Transcript{
		{Speaker: SpeakerInterviewer, Content: "What did you build?", StartTimeMS: 0},
		{Speaker: SpeakerCandidate, Content: "A payment service in Go.", StartTimeMS: 3000},
		{Speaker: SpeakerCandidate, Content: "It handled 10k requests per second.", StartTimeMS: 9000},
	}

	text := transcript.CandidateText()
	assert.Equal(t, "A payment service in Go.\nIt handled 10k requests per second.", text)
}

func TestTranscript_Text_IncludesSpeakers(t *testing.T) {
	transcript := Transcript{
		{Speaker: SpeakerCandidate, Content: "Hello.", StartTimeMS: 1000},
		{Speaker: SpeakerInterviewer, Content: "Welcome.", StartTimeMS: 0},
	}

	assert.Equal(t, "interviewer: Welcome.\ncandidate: Hello.", transcript.Text())
}

func TestTranscript_Empty(t *testing.T) {
	var transcript Transcript
	assert.False(t, transcript.HasCandidateSegments())
	assert.Equal(t, "", transcript.CandidateText())
	assert.Equal(t, "", transcript.Text())
}

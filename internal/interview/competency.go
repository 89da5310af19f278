package interview

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jonathan/interview-conductor/internal/types"
)

// CompetencyTag is a short label derived from job requirements used to track
// topical coverage during the conversation.
type CompetencyTag struct {
	Tag      string   // normalized identifier, e.g. "distributed_systems"
	Keywords []string // lowercase keywords that evidence this competency
}

// Detector decides which competency tags a transcript prefix has touched.
// It is a cheap, best-effort classifier used only to steer follow-up
// questions, never a scoring judgment. Implementations must be idempotent:
// running detection twice on the same transcript prefix yields the same set.
type Detector interface {
	Detect(transcript types.Transcript, vocabulary []CompetencyTag) map[string]bool
}

// stopwords are filler words excluded from competency keywords.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true, "be": true,
	"by": true, "for": true, "in": true, "is": true, "of": true, "on": true,
	"or": true, "the": true, "to": true, "with": true, "years": true,
	"year": true, "experience": true, "required": true, "preferred": true,
	"strong": true, "ability": true, "knowledge": true, "skills": true,
}

var nonWord = regexp.MustCompile(`[^a-z0-9+#.]+`)

// CompetencyVocabulary derives competency tags from role requirements.
// Skills, qualifications, and responsibilities each contribute tags; the
// derivation is deterministic so coverage tracking is reproducible.
func CompetencyVocabulary(reqs types.Requirements) []CompetencyTag {
	seen := make(map[string]bool)
	var vocab []CompetencyTag

	add := func(items []string) {
		for _, item := range items {
			keywords := significantWords(item)
			if len(keywords) == 0 {
				continue
			}
			tag := strings.Join(keywords, "_")
			if seen[tag] {
				continue
			}
			seen[tag] = true
			vocab = append(vocab, CompetencyTag{Tag: tag, Keywords: keywords})
		}
	}

	add(reqs.Skills)
	add(reqs.Qualifications)
	add(reqs.Responsibilities)

	sort.Slice(vocab, func(i, j int) bool { return vocab[i].Tag < vocab[j].Tag })
	return vocab
}

// significantWords lowercases, strips punctuation, and drops stopwords.
// At most four words are kept per requirement to bound tag length.
func significantWords(text string) []string {
	var words []string
	for _, w := range nonWord.Split(strings.ToLower(text), -1) {
		if w == "" || stopwords[w] || len(w) < 2 {
			continue
		}
		words = append(words, w)
		if len(words) == 4 {
			break
		}
	}
	return words
}

// KeywordDetector is the default Detector: a tag counts as covered when any
// of its keywords appears in the candidate's speech.
type KeywordDetector struct{}

// NewKeywordDetector returns the default keyword-matching detector.
func NewKeywordDetector() *KeywordDetector {
	return &KeywordDetector{}
}

// Detect matches candidate speech against the vocabulary. Matching is
// case-insensitive on whole words, deterministic, and idempotent.
func (d *KeywordDetector) Detect(transcript types.Transcript, vocabulary []CompetencyTag) map[string]bool {
	covered := make(map[string]bool, len(vocabulary))

	candidateWords := make(map[string]bool)
	for _, w := range nonWord.Split(strings.ToLower(transcript.CandidateText()), -1) {
		if w != "" {
			candidateWords[w] = true
		}
	}

	for _, tag := range vocabulary {
		for _, keyword := range tag.Keywords {
			if candidateWords[keyword] {
				covered[tag.Tag] = true
				break
			}
		}
	}

	return covered
}

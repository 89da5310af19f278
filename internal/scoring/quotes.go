package scoring

import "strings"

// normalizeQuote lowercases and collapses all whitespace runs to single
// spaces so that quote verification tolerates formatting differences
// between the model's copy and the stored transcript.
func normalizeQuote(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// VerifyQuotes returns the subset of quotes that appear verbatim in the
// candidate's speech, up to whitespace and casing. Quotes the model
// paraphrased or invented are dropped; the dimension score itself is kept.
//
// Verification is deliberately narrower than the full transcript: a quote
// only counts as evidence if the candidate said it, so interviewer wording
// the model echoes back is dropped like any other fabrication.
func VerifyQuotes(quotes []string, candidateText string) []string {
	haystack := normalizeQuote(candidateText)

	verified := make([]string, 0, len(quotes))
	for _, quote := range quotes {
		needle := normalizeQuote(quote)
		if needle == "" {
			continue
		}
		if strings.Contains(haystack, needle) {
			verified = append(verified, quote)
		}
	}
	return verified
}

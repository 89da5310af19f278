// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/interview-conductor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCandidateSummary outputs the parsed candidate summary.
func (p *Printer) PrintCandidateSummary(candidate *types.CandidateSummary) {
	if candidate == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:  %s\n", candidate.Name))

	if candidate.ResumeDigest != "" {
		sb.WriteString("\nResume Digest:\n")
		digest := candidate.ResumeDigest
		if len(digest) > 200 {
			digest = digest[:197] + "..."
		}
		for _, line := range wrapText(digest, boxWidth-6) {
			sb.WriteString(fmt.Sprintf("  %s\n", line))
		}
	}

	p.printBox("CANDIDATE SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintProgress outputs the interview phase, turn count and covered competencies.
func (p *Printer) PrintProgress(progress *types.Progress) {
	if progress == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Phase:            %s\n", progress.Phase))
	sb.WriteString(fmt.Sprintf("Questions asked:  %d\n", progress.QuestionsAsked))

	covered := progress.CoveredList()
	if len(covered) > 0 {
		sb.WriteString("\nCompetencies covered:\n")
		count := min(len(covered), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", covered[i]))
		}
		if len(covered) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(covered)-maxItemsToShow))
		}
	}

	p.printBox("INTERVIEW PROGRESS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDimensionScores outputs the per-dimension score table with evidence.
func (p *Printer) PrintDimensionScores(scores []types.DimensionScore) {
	if len(scores) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Scored %d dimensions:\n\n", len(scores)))

	for i, score := range scores {
		sb.WriteString(fmt.Sprintf("%-24s %4.1f/10  (weight %.2f)\n", score.DimensionKey, score.Score, score.WeightUsed))

		evidence := score.Evidence
		if len(evidence) > 50 {
			evidence = evidence[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("  %s\n", evidence))

		if len(score.CitedQuotes) > 0 {
			quote := score.CitedQuotes[0]
			if len(quote) > 45 {
				quote = quote[:42] + "..."
			}
			sb.WriteString(fmt.Sprintf("  \"%s\"", quote))
			if len(score.CitedQuotes) > 1 {
				sb.WriteString(fmt.Sprintf(" (+%d more)", len(score.CitedQuotes)-1))
			}
			sb.WriteString("\n")
		}
		if i < len(scores)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("DIMENSION SCORES", sb.String())
}

// PrintScoreSummary outputs the overall result: score, risk, narrative and
// any human override applied after scoring.
func (p *Printer) PrintScoreSummary(summary *types.InterviewScoreSummary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Overall score:   %d/100\n", summary.OverallScore))
	sb.WriteString(fmt.Sprintf("Anti-cheat risk: %s\n", summary.AntiCheatRisk))
	sb.WriteString(fmt.Sprintf("Model:           %s\n", summary.ModelVersion))
	sb.WriteString(fmt.Sprintf("Rubric:          %s\n", summary.RubricVersion))

	if summary.NarrativeSummary != "" {
		sb.WriteString("\nSummary:\n")
		for _, line := range wrapText(summary.NarrativeSummary, boxWidth-6) {
			sb.WriteString(fmt.Sprintf("  %s\n", line))
		}
	}

	if summary.Override != nil {
		sb.WriteString("\nHuman override:\n")
		sb.WriteString(fmt.Sprintf("  By:     %s\n", summary.Override.By))
		reason := summary.Override.Reason
		if len(reason) > 45 {
			reason = reason[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("  Reason: %s\n", reason))
		if summary.Override.OverallScore != nil {
			sb.WriteString(fmt.Sprintf("  Score:  %d/100\n", *summary.Override.OverallScore))
		}
	}

	p.printBox("INTERVIEW SCORE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAntiCheatSignals outputs detected anti-cheat signals.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintAntiCheatSignals(signals []types.AntiCheatSignal) {
	if len(signals) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO ANTI-CHEAT SIGNALS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d signals:\n\n", len(signals)))

	for i, signal := range signals {
		detail := signal.Detail
		if len(detail) > 45 {
			detail = detail[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("⚠ %s (severity %.2f)\n", signal.Kind, signal.Severity))
		sb.WriteString(fmt.Sprintf("  %s\n", detail))
		if i < len(signals)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("ANTI-CHEAT SIGNALS", sb.String())
}

// wrapText splits text into lines no longer than width, breaking on spaces.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	return append(lines, line)
}

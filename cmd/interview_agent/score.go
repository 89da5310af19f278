package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jonathan/interview-conductor/internal/config"
	"github.com/jonathan/interview-conductor/internal/llm"
	"github.com/jonathan/interview-conductor/internal/observability"
	"github.com/jonathan/interview-conductor/internal/resume"
	"github.com/jonathan/interview-conductor/internal/schemas"
	"github.com/jonathan/interview-conductor/internal/scoring"
	"github.com/jonathan/interview-conductor/internal/types"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a completed interview transcript against a rubric",
	Long: `Evaluates every rubric dimension over a transcript JSON file, aggregates the weighted overall score, and prints the report.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runScore,
}

var (
	scoreConfigPath     string
	scoreTranscript     string
	scoreRubric         string
	scoreResume         string
	scoreSignals        string
	scoreOutput         string
	scoreJobTitle       string
	scoreJobDescription string
	scoreInterviewID    string
	scoreAPIKey         string
	scoreVerbose        bool
)

func init() {
	// Config file flag (processed first)
	scoreCmd.Flags().StringVar(&scoreConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	scoreCmd.Flags().StringVarP(&scoreTranscript, "transcript", "i", "", "Path to transcript JSON file (array of segments)")
	scoreCmd.Flags().StringVar(&scoreRubric, "rubric", "", "Path to rubric JSON file (optional, defaults to the built-in rubric)")
	scoreCmd.Flags().StringVar(&scoreResume, "resume", "", "Path to candidate resume text file (optional, summarized for the report)")
	scoreCmd.Flags().StringVar(&scoreSignals, "signals", "", "Path to anti-cheat signals JSON file (optional)")
	scoreCmd.Flags().StringVarP(&scoreOutput, "out", "o", "", "Path to output result JSON file (optional)")
	scoreCmd.Flags().StringVar(&scoreJobTitle, "job-title", "", "Job title the candidate interviewed for (required)")
	scoreCmd.Flags().StringVar(&scoreJobDescription, "job-description", "", "Path to job description text file (optional)")
	scoreCmd.Flags().StringVar(&scoreInterviewID, "interview-id", "", "Interview UUID (optional, generated if omitted)")
	scoreCmd.Flags().StringVar(&scoreAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	scoreCmd.Flags().BoolVarP(&scoreVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if scoreConfigPath != "" {
		loadedCfg, err := config.LoadConfig(scoreConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Validate loaded config
		if err := loadedCfg.Validate(); err != nil {
			return err
		}

		cfg = *loadedCfg
		if scoreVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", scoreConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("transcript") {
		cfg.Transcript = scoreTranscript
	}
	if cmd.Flags().Changed("rubric") {
		cfg.Rubric = scoreRubric
	}
	if cmd.Flags().Changed("resume") {
		cfg.Resume = scoreResume
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = scoreAPIKey
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = scoreVerbose
	}

	// Step 3: Validate required fields
	if cfg.Transcript == "" {
		return fmt.Errorf("--transcript is required (via flag or config)")
	}
	if scoreJobTitle == "" {
		return fmt.Errorf("--job-title is required")
	}

	// Step 4: API Key handling
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	interviewID := uuid.New()
	if scoreInterviewID != "" {
		parsed, err := uuid.Parse(scoreInterviewID)
		if err != nil {
			return fmt.Errorf("invalid interview-id: %w", err)
		}
		interviewID = parsed
	}

	// Load inputs
	transcript, err := loadTranscriptFile(cfg.Transcript)
	if err != nil {
		return err
	}

	rubric, err := loadRubricFile(cfg.Rubric)
	if err != nil {
		return err
	}

	signals, err := loadSignalsFile(scoreSignals)
	if err != nil {
		return err
	}

	jobDescription := ""
	if scoreJobDescription != "" {
		content, err := os.ReadFile(scoreJobDescription)
		if err != nil {
			return fmt.Errorf("failed to read job description file: %w", err)
		}
		jobDescription = string(content)
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	printer := observability.NewPrinter(os.Stdout)

	// Summarize the resume for the report when provided
	if cfg.Resume != "" {
		content, err := os.ReadFile(cfg.Resume)
		if err != nil {
			return fmt.Errorf("failed to read resume file: %w", err)
		}
		candidate, err := resume.Parse(ctx, client, nil, string(content))
		if err != nil {
			return fmt.Errorf("failed to summarize resume: %w", err)
		}
		if cfg.Verbose {
			printer.PrintCandidateSummary(candidate)
		}
	}

	pipeline, err := scoring.NewPipeline(client, nil, rubric)
	if err != nil {
		return fmt.Errorf("failed to build scoring pipeline: %w", err)
	}

	result, err := pipeline.Score(ctx, scoring.Request{
		InterviewID:    interviewID,
		JobTitle:       scoreJobTitle,
		JobDescription: jobDescription,
		Transcript:     transcript,
		Signals:        signals,
	})
	if err != nil {
		return fmt.Errorf("failed to score interview: %w", err)
	}

	if cfg.Verbose {
		printer.PrintAntiCheatSignals(signals)
		printer.PrintDimensionScores(result.Dimensions)
	}
	printer.PrintScoreSummary(&result.Summary)

	// Write output file if requested
	if scoreOutput != "" {
		outputDir := filepath.Dir(scoreOutput)
		if outputDir != "" && outputDir != "." {
			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result to JSON: %w", err)
		}
		if err := os.WriteFile(scoreOutput, jsonBytes, 0644); err != nil {
			return fmt.Errorf("failed to write result to output file: %w", err)
		}

		_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", scoreOutput)
	}

	return nil
}

// loadTranscriptFile reads a transcript JSON file (an array of segments).
func loadTranscriptFile(path string) (types.Transcript, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript file: %w", err)
	}

	var transcript types.Transcript
	if err := json.Unmarshal(content, &transcript); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transcript JSON: %w", err)
	}

	return transcript, nil
}

// loadRubricFile reads and validates a rubric JSON file. An empty path
// selects the default rubric by returning nil.
func loadRubricFile(path string) (*types.Rubric, error) {
	if path == "" {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rubric file: %w", err)
	}

	if err := schemas.ValidateRubric(string(content)); err != nil {
		return nil, fmt.Errorf("rubric does not validate against schema: %w", err)
	}

	var rubric types.Rubric
	if err := json.Unmarshal(content, &rubric); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rubric JSON: %w", err)
	}

	return &rubric, nil
}

// loadSignalsFile reads an anti-cheat signals JSON file (an array of signals).
func loadSignalsFile(path string) ([]types.AntiCheatSignal, error) {
	if path == "" {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signals file: %w", err)
	}

	var signals []types.AntiCheatSignal
	if err := json.Unmarshal(content, &signals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signals JSON: %w", err)
	}

	return signals, nil
}

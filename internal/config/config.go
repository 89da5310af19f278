// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	Rubric     string `json:"rubric,omitempty"`     // Path to rubric JSON file
	Transcript string `json:"transcript,omitempty"` // Path to transcript JSON file
	Resume     string `json:"resume,omitempty"`     // Path to candidate resume text file

	// Server
	Port        int    `json:"port,omitempty"`         // HTTP listen port
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// Interview budgets
	IntroMinTurns       int `json:"intro_min_turns,omitempty"`       // Candidate answers required before leaving introduction
	TechnicalMaxTurns   int `json:"technical_max_turns,omitempty"`   // Technical answers before forcing behavioral
	BehavioralMinTurns  int `json:"behavioral_min_turns,omitempty"`  // Behavioral answers required before early close
	TotalCandidateTurns int `json:"total_candidate_turns,omitempty"` // Hard cap on candidate answers

	// Behavior
	APIKey  string `json:"api_key,omitempty"` // Gemini API key
	Verbose bool   `json:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	// Validate numeric ranges
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.IntroMinTurns < 0 {
		return fmt.Errorf("config error: 'intro_min_turns' must be non-negative")
	}
	if c.TechnicalMaxTurns < 0 {
		return fmt.Errorf("config error: 'technical_max_turns' must be non-negative")
	}
	if c.BehavioralMinTurns < 0 {
		return fmt.Errorf("config error: 'behavioral_min_turns' must be non-negative")
	}
	if c.TotalCandidateTurns < 0 {
		return fmt.Errorf("config error: 'total_candidate_turns' must be non-negative")
	}
	if c.TotalCandidateTurns > 0 && c.IntroMinTurns+c.BehavioralMinTurns > c.TotalCandidateTurns {
		return fmt.Errorf("config error: phase minimums exceed 'total_candidate_turns'")
	}

	// Validate file paths exist (if specified)
	if c.Rubric != "" {
		if _, err := os.Stat(c.Rubric); os.IsNotExist(err) {
			return fmt.Errorf("config error: rubric file not found: %s", c.Rubric)
		}
	}

	if c.Transcript != "" {
		if _, err := os.Stat(c.Transcript); os.IsNotExist(err) {
			return fmt.Errorf("config error: transcript file not found: %s", c.Transcript)
		}
	}

	if c.Resume != "" {
		if _, err := os.Stat(c.Resume); os.IsNotExist(err) {
			return fmt.Errorf("config error: resume file not found: %s", c.Resume)
		}
	}

	return nil
}

// HasBudgets reports whether any interview budget field is set.
func (c *Config) HasBudgets() bool {
	return c.IntroMinTurns > 0 || c.TechnicalMaxTurns > 0 ||
		c.BehavioralMinTurns > 0 || c.TotalCandidateTurns > 0
}

// MergeWithDefaults returns a new Config with empty string fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Rubric == "" {
		result.Rubric = defaults.Rubric
	}
	if result.Transcript == "" {
		result.Transcript = defaults.Transcript
	}
	if result.Resume == "" {
		result.Resume = defaults.Resume
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.IntroMinTurns == 0 {
		result.IntroMinTurns = defaults.IntroMinTurns
	}
	if result.TechnicalMaxTurns == 0 {
		result.TechnicalMaxTurns = defaults.TechnicalMaxTurns
	}
	if result.BehavioralMinTurns == 0 {
		result.BehavioralMinTurns = defaults.BehavioralMinTurns
	}
	if result.TotalCandidateTurns == 0 {
		result.TotalCandidateTurns = defaults.TotalCandidateTurns
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

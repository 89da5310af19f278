package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/interview-conductor/internal/config"
	"github.com/jonathan/interview-conductor/internal/interview"
	"github.com/jonathan/interview-conductor/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveConfigPath string
	servePort       int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for conducting interviews, ingesting transcripts, and scoring.

Configuration can be loaded from a JSON file using --config. Command-line arguments and environment variables override config file values.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Step 1: Load config file if provided
	var cfg config.Config
	if serveConfigPath != "" {
		loadedCfg, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Validate loaded config
		if err := loadedCfg.Validate(); err != nil {
			return err
		}

		cfg = *loadedCfg
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	if cmd.Flags().Changed("port") || cfg.Port == 0 {
		cfg.Port = servePort
	}

	// Step 3: Environment overrides for secrets
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.DatabaseURL = url
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or 'database_url' config value is required")
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.APIKey = key
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or 'api_key' config value is required")
	}

	srv, err := server.New(context.Background(), server.Config{
		Port:        cfg.Port,
		DatabaseURL: cfg.DatabaseURL,
		APIKey:      cfg.APIKey,
		Budgets:     budgetsFromConfig(cfg),
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// budgetsFromConfig maps configured turn budgets onto the interview defaults.
// Unset fields keep their default so a config file can tune one budget
// without restating the rest.
func budgetsFromConfig(cfg config.Config) interview.Budgets {
	budgets := interview.DefaultBudgets()
	if !cfg.HasBudgets() {
		return budgets
	}
	if cfg.IntroMinTurns > 0 {
		budgets.IntroMinTurns = cfg.IntroMinTurns
	}
	if cfg.TechnicalMaxTurns > 0 {
		budgets.TechnicalMaxTurns = cfg.TechnicalMaxTurns
	}
	if cfg.BehavioralMinTurns > 0 {
		budgets.BehavioralMinTurns = cfg.BehavioralMinTurns
	}
	if cfg.TotalCandidateTurns > 0 {
		budgets.TotalCandidateTurns = cfg.TotalCandidateTurns
	}
	return budgets
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/interview-conductor/internal/schemas"
	"github.com/jonathan/interview-conductor/internal/types"
	"github.com/spf13/cobra"
)

var validateRubricCmd = &cobra.Command{
	Use:   "validate-rubric",
	Short: "Validate a rubric JSON file",
	Long:  "Validates a rubric file against the rubric schema and the weight-sum rule, then prints its dimension count and version.",
	RunE:  runValidateRubric,
}

var (
	validateRubricInput string
)

func init() {
	validateRubricCmd.Flags().StringVarP(&validateRubricInput, "in", "i", "", "Path to rubric JSON file (required)")

	if err := validateRubricCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(validateRubricCmd)
}

func runValidateRubric(_ *cobra.Command, _ []string) error {
	content, err := os.ReadFile(validateRubricInput)
	if err != nil {
		return fmt.Errorf("failed to read rubric file: %w", err)
	}

	// Schema validation catches structural problems with field-level detail
	if err := schemas.ValidateRubric(string(content)); err != nil {
		var validationErr *schemas.ValidationError
		var schemaLoadErr *schemas.SchemaLoadError
		if errors.As(err, &validationErr) {
			return fmt.Errorf("rubric does not validate against schema: %w", err)
		} else if errors.As(err, &schemaLoadErr) {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: Could not validate rubric against schema (schema loading failed): %v\n", err)
		} else {
			return fmt.Errorf("failed to validate rubric: %w", err)
		}
	}

	var rubric types.Rubric
	if err := json.Unmarshal(content, &rubric); err != nil {
		return fmt.Errorf("failed to unmarshal rubric JSON: %w", err)
	}

	// Semantic validation: key uniqueness and weight sum
	if err := rubric.Validate(); err != nil {
		return fmt.Errorf("rubric is invalid: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Rubric is valid\n")
	_, _ = fmt.Fprintf(os.Stdout, "Dimensions: %d\n", len(rubric.Dimensions))
	_, _ = fmt.Fprintf(os.Stdout, "Version:    %s\n", rubric.Version())

	return nil
}

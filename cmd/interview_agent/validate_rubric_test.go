package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRubricCLI_ValidRubric(t *testing.T) {
	binaryPath := getBinaryPath(t)

	rubricPath := filepath.Join(t.TempDir(), "rubric.json")
	require.NoError(t, os.WriteFile(rubricPath, []byte(`{
		"dimensions": [
			{"key": "technical_depth", "label": "Technical Depth", "weight": 0.5},
			{"key": "communication", "label": "Communication", "weight": 0.5}
		]
	}`), 0644))

	output, err := exec.Command(binaryPath, "validate-rubric", "--in", rubricPath).CombinedOutput()
	require.NoError(t, err, "output: %s", output)

	assert.Contains(t, string(output), "Rubric is valid")
	assert.Contains(t, string(output), "Dimensions: 2")
}

func TestValidateRubricCLI_WeightsDoNotSum(t *testing.T) {
	binaryPath := getBinaryPath(t)

	rubricPath := filepath.Join(t.TempDir(), "rubric.json")
	require.NoError(t, os.WriteFile(rubricPath, []byte(`{
		"dimensions": [
			{"key": "technical_depth", "label": "Technical Depth", "weight": 0.5}
		]
	}`), 0644))

	output, err := exec.Command(binaryPath, "validate-rubric", "--in", rubricPath).CombinedOutput()
	assert.Error(t, err)
	assert.Contains(t, string(output), "rubric is invalid")
}

func TestValidateRubricCLI_MissingFile(t *testing.T) {
	binaryPath := getBinaryPath(t)

	output, err := exec.Command(binaryPath, "validate-rubric", "--in", "/nonexistent/rubric.json").CombinedOutput()
	assert.Error(t, err)
	assert.Contains(t, string(output), "failed to read rubric file")
}

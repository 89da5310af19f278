package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDimensionScore_Valid(t *testing.T) {
	doc := `{
		"dimension_key": "technical_skills",
		"score": 7.5,
		"evidence": "Described sharding a Postgres cluster under load.",
		"cited_quotes": ["we split the hot table by tenant id"]
	}`

	err := ValidateDimensionScore(doc)
	assert.NoError(t, err)
}

func TestValidateDimensionScore_EmptyQuotesAllowed(t *testing.T) {
	doc := `{
		"dimension_key": "confidence",
		"score": 4,
		"evidence": "Hesitant answers throughout.",
		"cited_quotes": []
	}`

	err := ValidateDimensionScore(doc)
	assert.NoError(t, err)
}

func TestValidateDimensionScore_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "missing evidence",
			doc:  `{"dimension_key": "communication", "score": 5, "cited_quotes": []}`,
		},
		{
			name: "score out of range",
			doc:  `{"dimension_key": "communication", "score": 11, "evidence": "x", "cited_quotes": []}`,
		},
		{
			name: "score wrong type",
			doc:  `{"dimension_key": "communication", "score": "high", "evidence": "x", "cited_quotes": []}`,
		},
		{
			name: "unexpected field",
			doc:  `{"dimension_key": "communication", "score": 5, "evidence": "x", "cited_quotes": [], "overall": 50}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDimensionScore(tt.doc)
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.NotEmpty(t, ve.Errors)
		})
	}
}

func TestValidateRubric(t *testing.T) {
	valid := `{"dimensions": [
		{"key": "technical_skills", "label": "Technical Skills", "weight": 0.6},
		{"key": "communication", "label": "Communication", "weight": 0.4, "description": "Clarity of answers."}
	]}`
	assert.NoError(t, ValidateRubric(valid))

	badKey := `{"dimensions": [{"key": "Technical Skills", "label": "x", "weight": 0.5}]}`
	var ve *ValidationError
	err := ValidateRubric(badKey)
	require.Error(t, err)
	require.True(t, errors.As(err, &ve))

	empty := `{"dimensions": []}`
	assert.Error(t, ValidateRubric(empty))
}

func TestValidateJSONString_SchemaLoadError(t *testing.T) {
	err := ValidateJSONString(`{"type": nonsense}`, `{}`)
	require.Error(t, err)

	var le *SchemaLoadError
	assert.True(t, errors.As(err, &le))
}

func TestValidationError_MessageListsFields(t *testing.T) {
	err := ValidateDimensionScore(`{"score": 5}`)
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Error(), "validation failed")
}

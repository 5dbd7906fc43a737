package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRiskResultValid(t *testing.T) {
	raw := []byte(`{"recommendation":"APPROVE","rationale":"clean file","conditions":[]}`)
	result, err := Validate(RiskResult, raw)
	require.NoError(t, err)

	risk, ok := result.(*RiskResultV1)
	require.True(t, ok)
	assert.Equal(t, "APPROVE", risk.Recommendation)
}

func TestValidateRiskResultRejectsUnknownRecommendation(t *testing.T) {
	raw := []byte(`{"recommendation":"MAYBE","rationale":"x"}`)
	_, err := Validate(RiskResult, raw)
	require.Error(t, err)
}

func TestValidateRejectsUnknownFields(t *testing.T) {
	raw := []byte(`{"recommendation":"APPROVE","rationale":"x","extra_field":true}`)
	_, err := Validate(RiskResult, raw)
	require.Error(t, err)
}

func TestValidateCreditResultScoreRange(t *testing.T) {
	raw := []byte(`{"credit_score":900}`)
	_, err := Validate(CreditResult, raw)
	require.Error(t, err)
}

func TestValidateUnknownSchemaName(t *testing.T) {
	_, err := Validate(Name("not_a_schema"), []byte(`{}`))
	require.Error(t, err)
}

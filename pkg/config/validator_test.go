package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfigForTest() *Config {
	agents := map[string]*AgentSpec{
		"IntakeAgent": {OutputSchema: "intake_result"},
		"RiskAgent":   {OutputSchema: "risk_result"},
	}
	servers := map[string]*ToolServerSpec{
		"core-banking-server": {Transport: TransportConfig{Type: TransportTypeStdio, Command: "x"}},
	}
	patterns := map[string]*PatternConfig{
		"p1": {
			ApplicationTypes: []string{"consumer_installment"},
			Steps: []StepConfig{
				{Name: "intake", Agents: []StepAgentConfig{{Name: "IntakeAgent"}}},
				{Name: "risk", Agents: []StepAgentConfig{{Name: "RiskAgent"}}, RequiredPredecessors: []string{"intake"}},
			},
		},
	}
	providers := map[string]*LLMProviderConfig{
		"google-default": {Type: LLMProviderTypeGoogle, Model: "gemini-2.5-pro", MaxToolResultTokens: 10000},
	}

	return &Config{
		Defaults:            &Defaults{},
		Retention:           DefaultRetentionConfig(),
		AgentRegistry:       NewAgentRegistry(agents),
		ToolServerRegistry:  NewToolServerRegistry(servers),
		PatternRegistry:     NewPatternRegistry(patterns),
		LLMProviderRegistry: NewLLMProviderRegistry(providers),
	}
}

func TestValidateAllValid(t *testing.T) {
	cfg := validConfigForTest()
	require.NoError(t, NewValidator(cfg).ValidateAll())
}

func TestValidateStepUnknownAgent(t *testing.T) {
	cfg := validConfigForTest()
	p, _ := cfg.PatternRegistry.Get("p1")
	p.Steps[0].Agents[0].Name = "GhostAgent"

	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestValidateStepPredecessorMustPrecede(t *testing.T) {
	cfg := validConfigForTest()
	p, _ := cfg.PatternRegistry.Get("p1")
	p.Steps[0].RequiredPredecessors = []string{"risk"} // forward reference, invalid

	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestValidateDuplicateApplicationType(t *testing.T) {
	cfg := validConfigForTest()
	cfg.PatternRegistry = NewPatternRegistry(map[string]*PatternConfig{
		"p1": {
			ApplicationTypes: []string{"consumer_installment"},
			Steps:            []StepConfig{{Name: "a", Agents: []StepAgentConfig{{Name: "IntakeAgent"}}}},
		},
		"p2": {
			ApplicationTypes: []string{"consumer_installment"},
			Steps:            []StepConfig{{Name: "a", Agents: []StepAgentConfig{{Name: "IntakeAgent"}}}},
		},
	})

	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestValidateToolServerMissingCommand(t *testing.T) {
	cfg := validConfigForTest()
	cfg.ToolServerRegistry = NewToolServerRegistry(map[string]*ToolServerSpec{
		"core-banking-server": {Transport: TransportConfig{Type: TransportTypeStdio}},
	})

	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingRequiredField)
}

func TestValidateAgentMissingOutputSchema(t *testing.T) {
	cfg := validConfigForTest()
	cfg.AgentRegistry = NewAgentRegistry(map[string]*AgentSpec{
		"IntakeAgent": {},
	})
	cfg.PatternRegistry = NewPatternRegistry(map[string]*PatternConfig{
		"p1": {
			ApplicationTypes: []string{"consumer_installment"},
			Steps:            []StepConfig{{Name: "a", Agents: []StepAgentConfig{{Name: "IntakeAgent"}}}},
		},
	})

	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingRequiredField)
}

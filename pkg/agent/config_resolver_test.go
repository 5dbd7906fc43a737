package agent

import (
	"testing"

	"github.com/lendwell/underwriter/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	max5 := 5
	agents := map[string]*config.AgentSpec{
		"RiskAgent": {
			OutputSchema: "risk_result",
			ToolServers:  []string{"core-banking-server"},
			LLMProvider:  "google-default",
		},
	}
	servers := map[string]*config.ToolServerSpec{
		"core-banking-server": {Transport: config.TransportConfig{Type: config.TransportTypeStdio, Command: "x"}},
	}
	providers := map[string]*config.LLMProviderConfig{
		"google-default": {Type: config.LLMProviderTypeGoogle, Model: "gemini-2.5-pro", MaxToolResultTokens: 10000},
		"openai-default": {Type: config.LLMProviderTypeOpenAI, Model: "gpt-5", MaxToolResultTokens: 10000},
	}
	return &config.Config{
		Defaults:            &config.Defaults{LLMProvider: "google-default", MaxIterations: &max5},
		AgentRegistry:       config.NewAgentRegistry(agents),
		ToolServerRegistry:  config.NewToolServerRegistry(servers),
		LLMProviderRegistry: config.NewLLMProviderRegistry(providers),
	}
}

func TestResolveAgentConfigAppliesDefaults(t *testing.T) {
	cfg := testConfig(t)
	pattern := &config.PatternConfig{}
	step := config.StepConfig{}
	stepAgent := config.StepAgentConfig{Name: "RiskAgent"}

	resolved, err := ResolveAgentConfig(cfg, pattern, step, stepAgent)
	require.NoError(t, err)
	assert.Equal(t, "google-default", resolved.LLMProviderName)
	assert.Equal(t, 5, resolved.MaxIterations)
	assert.Equal(t, []string{"core-banking-server"}, resolved.ToolServers)
}

func TestResolveAgentConfigStepAgentOverridesProvider(t *testing.T) {
	cfg := testConfig(t)
	pattern := &config.PatternConfig{}
	step := config.StepConfig{}
	stepAgent := config.StepAgentConfig{Name: "RiskAgent", LLMProvider: "openai-default"}

	resolved, err := ResolveAgentConfig(cfg, pattern, step, stepAgent)
	require.NoError(t, err)
	assert.Equal(t, "openai-default", resolved.LLMProviderName)
}

func TestResolveAgentConfigNilPattern(t *testing.T) {
	cfg := testConfig(t)
	_, err := ResolveAgentConfig(cfg, nil, config.StepConfig{}, config.StepAgentConfig{Name: "RiskAgent"})
	require.Error(t, err)
}

func TestResolveAgentConfigUnknownAgent(t *testing.T) {
	cfg := testConfig(t)
	_, err := ResolveAgentConfig(cfg, &config.PatternConfig{}, config.StepConfig{}, config.StepAgentConfig{Name: "GhostAgent"})
	require.Error(t, err)
}

func TestAggregatePatternToolServers(t *testing.T) {
	cfg := testConfig(t)
	pattern := &config.PatternConfig{
		Steps: []config.StepConfig{
			{Name: "risk", Agents: []config.StepAgentConfig{{Name: "RiskAgent"}}},
		},
	}
	servers := AggregatePatternToolServers(cfg, pattern)
	assert.Equal(t, []string{"core-banking-server"}, servers)
}

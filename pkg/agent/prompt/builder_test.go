package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendwell/underwriter/pkg/agent"
	"github.com/lendwell/underwriter/pkg/config"
)

func TestNewBuilder_PanicsOnNilRegistry(t *testing.T) {
	assert.Panics(t, func() { NewBuilder(nil) })
}

func newTestExecCtx() *agent.ExecutionContext {
	return &agent.ExecutionContext{
		ApplicationType: "consumer_installment",
		ApplicationData: `{"amount": 5000}`,
		Config: &agent.ResolvedAgentConfig{
			AgentName:          "credit-agent",
			ToolServers:        []string{"credit-bureau"},
			CustomInstructions: "Pull the applicant's credit report before concluding.",
			PersonaText:        "You are a senior credit analyst.",
		},
	}
}

func TestBuildSystemPrompt_ComposesAllTiers(t *testing.T) {
	registry := config.NewToolServerRegistry(map[string]*config.ToolServerSpec{
		"credit-bureau": {
			Transport:    config.TransportConfig{Type: config.TransportTypeStdio, Command: "echo"},
			Instructions: "Use pull_report to fetch the bureau file.",
		},
	})
	b := NewBuilder(registry)

	prompt := b.BuildSystemPrompt(newTestExecCtx())

	assert.Contains(t, prompt, "## General Underwriting Agent Instructions")
	assert.Contains(t, prompt, "## credit-bureau Instructions")
	assert.Contains(t, prompt, "Use pull_report to fetch the bureau file.")
	assert.Contains(t, prompt, "## Persona")
	assert.Contains(t, prompt, "senior credit analyst")
	assert.Contains(t, prompt, "## Agent-Specific Instructions")
	assert.Contains(t, prompt, "Pull the applicant's credit report")
}

func TestBuildSystemPrompt_WarnsOnFailedServers(t *testing.T) {
	registry := config.NewToolServerRegistry(nil)
	b := NewBuilder(registry)

	execCtx := newTestExecCtx()
	execCtx.FailedServers = map[string]string{"credit-bureau": "connection refused"}

	prompt := b.BuildSystemPrompt(execCtx)

	assert.Contains(t, prompt, "## Unavailable Tool Servers")
	assert.Contains(t, prompt, "credit-bureau")
	assert.Contains(t, prompt, "connection refused")
}

func TestBuildUserPrompt_IncludesApplicationAndLedger(t *testing.T) {
	registry := config.NewToolServerRegistry(nil)
	b := NewBuilder(registry)

	prompt := b.BuildUserPrompt(newTestExecCtx(), "Intake step found no missing fields.")

	assert.Contains(t, prompt, "## Application Details")
	assert.Contains(t, prompt, `"amount": 5000`)
	assert.Contains(t, prompt, "## Prior Step Results")
	assert.Contains(t, prompt, "Intake step found no missing fields.")
	assert.Contains(t, prompt, "## Your Task")
}

func TestBuildUserPrompt_NoPriorSteps(t *testing.T) {
	registry := config.NewToolServerRegistry(nil)
	b := NewBuilder(registry)

	prompt := b.BuildUserPrompt(newTestExecCtx(), "")

	assert.Contains(t, prompt, "No prior steps have run")
}

func TestBuildForcedConclusionPrompt(t *testing.T) {
	registry := config.NewToolServerRegistry(nil)
	b := NewBuilder(registry)

	prompt := b.BuildForcedConclusionPrompt(5, 5)

	assert.Contains(t, prompt, "5 of 5 iterations")
	assert.Contains(t, prompt, "without calling any more tools")
}

func TestToolServerRegistry_ReturnsInjectedRegistry(t *testing.T) {
	registry := config.NewToolServerRegistry(nil)
	b := NewBuilder(registry)

	require.Same(t, registry, b.ToolServerRegistry())
}

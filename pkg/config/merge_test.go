package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeAgentsUserOverridesBuiltin(t *testing.T) {
	builtin := map[string]BuiltinAgentSpec{
		"IntakeAgent": {OutputSchema: "intake_result", ToolServers: []string{"core-banking-server"}},
	}
	user := map[string]AgentSpec{
		"IntakeAgent": {OutputSchema: "intake_result", CustomInstructions: "custom"},
	}

	merged := mergeAgents(builtin, user)
	require.Contains(t, merged, "IntakeAgent")
	assert.Equal(t, "custom", merged["IntakeAgent"].CustomInstructions)
}

func TestMergeAgentsKeepsUnreferencedBuiltins(t *testing.T) {
	builtin := map[string]BuiltinAgentSpec{
		"IntakeAgent": {OutputSchema: "intake_result"},
		"CreditAgent": {OutputSchema: "credit_result"},
	}
	merged := mergeAgents(builtin, nil)
	assert.Len(t, merged, 2)
}

func TestMergeToolServersUserOverridesBuiltin(t *testing.T) {
	builtin := map[string]ToolServerSpec{
		"core-banking-server": {Transport: TransportConfig{Type: TransportTypeStdio, Command: "orig"}},
	}
	user := map[string]ToolServerSpec{
		"core-banking-server": {Transport: TransportConfig{Type: TransportTypeStdio, Command: "replaced"}},
	}
	merged := mergeToolServers(builtin, user)
	assert.Equal(t, "replaced", merged["core-banking-server"].Transport.Command)
}

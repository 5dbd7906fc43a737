package config

import (
	"sync"
)

// BuiltinConfig holds all built-in configuration data: default agents, tool
// servers, LLM providers, and patterns. Lets the process start with zero
// external config for local development and tests.
type BuiltinConfig struct {
	Agents                 map[string]BuiltinAgentSpec
	ToolServers            map[string]ToolServerSpec
	LLMProviders           map[string]LLMProviderConfig
	PatternDefinitions     map[string]PatternConfig
	DefaultApplicationType string
}

// BuiltinAgentSpec holds built-in agent metadata (configuration only).
type BuiltinAgentSpec struct {
	Type               AgentType
	Description        string
	ToolServers        []string
	PersonaFile        string
	CustomInstructions string
	OutputSchema       string
}

var (
	builtinConfig     *BuiltinConfig
	builtinConfigOnce sync.Once
)

// GetBuiltinConfig returns the singleton built-in configuration (thread-safe,
// lazy-initialized).
func GetBuiltinConfig() *BuiltinConfig {
	builtinConfigOnce.Do(initBuiltinConfig)
	return builtinConfig
}

func initBuiltinConfig() {
	builtinConfig = &BuiltinConfig{
		Agents:                 initBuiltinAgents(),
		ToolServers:            initBuiltinToolServers(),
		LLMProviders:           initBuiltinLLMProviders(),
		PatternDefinitions:     initBuiltinPatterns(),
		DefaultApplicationType: "consumer_installment",
	}
}

func initBuiltinAgents() map[string]BuiltinAgentSpec {
	return map[string]BuiltinAgentSpec{
		"IntakeAgent": {
			Description:  "Validates application completeness and routes to the correct pattern",
			ToolServers:  []string{"core-banking-server"},
			OutputSchema: "intake_result",
			CustomInstructions: `You are a loan intake specialist. Verify the application carries every
field required for underwriting and flag anything missing or inconsistent.
Do not assess creditworthiness — that is the credit and risk agents' job.`,
		},
		"CreditAgent": {
			Description:  "Pulls and evaluates the applicant's credit profile",
			ToolServers:  []string{"core-banking-server", "credit-bureau-server"},
			OutputSchema: "credit_result",
			CustomInstructions: `You are a credit analyst. Retrieve the applicant's credit report and
summarize score, trade lines, delinquencies, and any fraud or identity
signals the bureau surfaces.`,
		},
		"IncomeAgent": {
			Description:  "Verifies income and employment",
			ToolServers:  []string{"core-banking-server", "payroll-verification-server"},
			OutputSchema: "income_result",
			CustomInstructions: `You are an income verification specialist. Confirm stated income against
payroll and bank-statement evidence and compute a debt-to-income ratio.`,
		},
		"RiskAgent": {
			Description:  "Synthesizes prior findings into a final recommendation",
			ToolServers:  []string{"core-banking-server"},
			OutputSchema: "risk_result",
			CustomInstructions: `You are a senior underwriter. Weigh the intake, credit, and income
findings already on the record and produce one of APPROVE,
CONDITIONAL_APPROVAL, MANUAL_REVIEW, or DENY with supporting rationale.
Default to MANUAL_REVIEW when evidence conflicts or is incomplete. On
APPROVE or CONDITIONAL_APPROVAL, also state the approved amount, interest
rate, and term in months; always give a primary_reason and, when denying
or requiring review, the supporting reasons behind it.`,
		},
	}
}

func initBuiltinToolServers() map[string]ToolServerSpec {
	return map[string]ToolServerSpec{
		"core-banking-server": {
			Transport: TransportConfig{
				Type:    TransportTypeStdio,
				Command: "core-banking-mcp-server",
				Args:    []string{"--read-only"},
			},
			Instructions: `Use this server to look up existing account relationships, balances, and
prior-loan history for the applicant. Always pass the opaque applicant_id,
never a raw government identifier.`,
			Scrubbing: &ScrubbingConfig{
				Enabled:       true,
				AllowlistKeys: []string{"account_number", "routing_number", "applicant_id"},
			},
		},
		"credit-bureau-server": {
			Transport: TransportConfig{
				Type: TransportTypeHTTP,
				URL:  "https://bureau.internal.example/mcp",
			},
			Instructions: `Use this server to pull a credit report for the applicant. The bureau
accepts applicant_id only — it resolves the identifier on its own side.`,
			Scrubbing: &ScrubbingConfig{
				Enabled:       true,
				AllowlistKeys: []string{"applicant_id"},
			},
		},
		"payroll-verification-server": {
			Transport: TransportConfig{
				Type: TransportTypeHTTP,
				URL:  "https://payroll-verify.internal.example/mcp",
			},
			Instructions: `Use this server to confirm income and employment against payroll
records for the applicant.`,
			Scrubbing: &ScrubbingConfig{
				Enabled:       true,
				AllowlistKeys: []string{"applicant_id"},
			},
		},
	}
}

func initBuiltinLLMProviders() map[string]LLMProviderConfig {
	return map[string]LLMProviderConfig{
		"google-default": {
			Type:                LLMProviderTypeGoogle,
			Model:               "gemini-2.5-pro",
			APIKeyEnv:           "GOOGLE_API_KEY",
			MaxToolResultTokens: 950000,
		},
		"openai-default": {
			Type:                LLMProviderTypeOpenAI,
			Model:               "gpt-5",
			APIKeyEnv:           "OPENAI_API_KEY",
			MaxToolResultTokens: 250000,
		},
		"anthropic-default": {
			Type:                LLMProviderTypeAnthropic,
			Model:               "claude-sonnet-4-20250514",
			APIKeyEnv:           "ANTHROPIC_API_KEY",
			MaxToolResultTokens: 150000,
		},
	}
}

func initBuiltinPatterns() map[string]PatternConfig {
	return map[string]PatternConfig{
		"consumer-installment-pattern": {
			ApplicationTypes: []string{"consumer_installment"},
			Description:      "Four-step sequential underwriting for consumer installment loans",
			Steps: []StepConfig{
				{
					Name:   "intake",
					Agents: []StepAgentConfig{{Name: "IntakeAgent"}},
				},
				{
					Name:                 "credit",
					Agents:               []StepAgentConfig{{Name: "CreditAgent"}},
					RequiredPredecessors: []string{"intake"},
				},
				{
					Name:                 "income",
					Agents:               []StepAgentConfig{{Name: "IncomeAgent"}},
					RequiredPredecessors: []string{"intake"},
				},
				{
					Name:                 "risk",
					Agents:               []StepAgentConfig{{Name: "RiskAgent"}},
					RequiredPredecessors: []string{"credit", "income"},
				},
			},
		},
	}
}

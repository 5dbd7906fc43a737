package agent

import (
	"time"

	"github.com/lendwell/underwriter/pkg/config"
)

// ExecutionContext carries all dependencies and state needed by an agent
// during execution. Created by the orchestration engine for each step.
type ExecutionContext struct {
	// Identity
	RunID       string
	StepName    string
	ExecutionID string
	AgentName   string

	// ApplicantID is the opaque identifier tool servers receive in place of
	// any raw government identifier (spec §4.3).
	ApplicantID string

	// ApplicationType selects the pattern this run executes.
	ApplicationType string

	// ApplicationData is the raw submitted application, as text (JSON).
	// Not parsed here — the agent's own prompt decides what to extract.
	ApplicationData string

	// Configuration (resolved from the defaults → agentDef → pattern →
	// step → step-agent hierarchy)
	Config *ResolvedAgentConfig

	// Dependencies (injected by the orchestration engine)
	LLMClient     LLMClient
	ToolExecutor  ToolExecutor
	PromptBuilder PromptBuilder

	// FailedServers maps serverID → error message for tool servers that
	// failed to initialize. Used by the prompt builder to warn the LLM.
	// nil when every configured server initialized successfully.
	FailedServers map[string]string
}

// ResolvedAgentConfig is the fully-resolved configuration for an agent
// execution. Every hierarchy level (defaults → agent definition → pattern →
// step → step-agent) has already been applied.
type ResolvedAgentConfig struct {
	AgentName          string
	LLMProvider        *config.LLMProviderConfig
	LLMProviderName    string // the resolved provider key, for audit records
	MaxIterations      int
	IterationTimeout   time.Duration // per tool-call round, default 120s
	ToolServers        []string
	CustomInstructions string
	PersonaText        string // eagerly loaded persona file contents
	OutputSchema       string // pkg/schema registry key
}

// PromptBuilder builds all prompt text for the agent controller.
// Implemented by pkg/agent/prompt; defined as an interface here to avoid a
// circular import between pkg/agent and its prompt package.
type PromptBuilder interface {
	BuildSystemPrompt(execCtx *ExecutionContext) string
	BuildUserPrompt(execCtx *ExecutionContext, ledgerContext string) string
	BuildForcedConclusionPrompt(iteration, maxIterations int) string
	ToolServerRegistry() *config.ToolServerRegistry
}

package agent

import (
	"fmt"
	"time"

	"github.com/lendwell/underwriter/pkg/config"
)

const DefaultMaxIterations = 20

// DefaultIterationTimeout is the default per-iteration timeout. Each
// iteration (LLM call + tool execution) gets its own context.WithTimeout
// derived from the parent step context, so a single stuck iteration can't
// consume the entire step budget.
const DefaultIterationTimeout = 120 * time.Second

// ResolveAgentConfig builds the final agent configuration by applying the
// hierarchy: defaults → agent definition → pattern → step → step-agent.
func ResolveAgentConfig(
	cfg *config.Config,
	pattern *config.PatternConfig,
	step config.StepConfig,
	stepAgent config.StepAgentConfig,
) (*ResolvedAgentConfig, error) {
	if pattern == nil {
		return nil, fmt.Errorf("pattern configuration cannot be nil")
	}

	defaults := cfg.Defaults

	agentDef, err := cfg.GetAgent(stepAgent.Name)
	if err != nil {
		return nil, fmt.Errorf("agent %q not found: %w", stepAgent.Name, err)
	}

	provider, providerName, err := resolveLLMProvider(cfg,
		defaults.LLMProvider, agentDef.LLMProvider, pattern.LLMProvider, stepAgent.LLMProvider,
	)
	if err != nil {
		return nil, err
	}

	maxIter := resolveMaxIterations(
		defaults.MaxIterations, agentDef.MaxIterations,
		pattern.MaxIterations, step.MaxIterations, stepAgent.MaxIterations,
	)

	// Resolve tool servers (step-agent > step > pattern > agent-def)
	var toolServers []string
	if len(agentDef.ToolServers) > 0 {
		toolServers = agentDef.ToolServers
	}
	if len(pattern.ToolServers) > 0 {
		toolServers = pattern.ToolServers
	}
	if len(step.ToolServers) > 0 {
		toolServers = step.ToolServers
	}
	if len(stepAgent.ToolServers) > 0 {
		toolServers = stepAgent.ToolServers
	}

	return &ResolvedAgentConfig{
		AgentName:          stepAgent.Name,
		LLMProvider:        provider,
		LLMProviderName:    providerName,
		MaxIterations:      maxIter,
		IterationTimeout:   DefaultIterationTimeout,
		ToolServers:        toolServers,
		CustomInstructions: agentDef.CustomInstructions,
		OutputSchema:       agentDef.OutputSchema,
	}, nil
}

// resolveLLMProvider picks the last non-empty provider name from the given
// overrides, listed in lowest-to-highest precedence order, and looks it up
// in the config registry.
func resolveLLMProvider(cfg *config.Config, providerNames ...string) (*config.LLMProviderConfig, string, error) {
	var name string
	for _, n := range providerNames {
		if n != "" {
			name = n
		}
	}
	provider, err := cfg.GetLLMProvider(name)
	if err != nil {
		return nil, "", fmt.Errorf("LLM provider %q not found: %w", name, err)
	}
	return provider, name, nil
}

// resolveMaxIterations returns the last non-nil value from the given
// overrides, falling back to DefaultMaxIterations.
func resolveMaxIterations(overrides ...*int) int {
	maxIter := DefaultMaxIterations
	for _, o := range overrides {
		if o != nil {
			maxIter = *o
		}
	}
	return maxIter
}

// AggregatePatternToolServers collects the union of all tool servers used by
// a pattern's steps. Checks step-level overrides, step-agent overrides, and
// the agent definitions in the registry.
func AggregatePatternToolServers(cfg *config.Config, pattern *config.PatternConfig) []string {
	seen := make(map[string]struct{})
	var servers []string
	add := func(ids []string) {
		for _, s := range ids {
			if _, ok := seen[s]; !ok {
				seen[s] = struct{}{}
				servers = append(servers, s)
			}
		}
	}

	add(pattern.ToolServers)
	for _, step := range pattern.Steps {
		add(step.ToolServers)
		for _, sa := range step.Agents {
			add(sa.ToolServers)
			if agentDef, err := cfg.GetAgent(sa.Name); err == nil {
				add(agentDef.ToolServers)
			}
		}
	}
	return servers
}

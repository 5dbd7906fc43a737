package config

import (
	"fmt"
)

// Validator performs cross-referential validation on a loaded Config that
// per-struct tags cannot express: existence of referenced agents, tool
// servers, and LLM providers, step-dependency graph sanity, and uniqueness
// constraints across the registries.
type Validator struct {
	cfg *Config
}

// NewValidator creates a new configuration validator.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll runs every validation pass and returns the first failure.
func (v *Validator) ValidateAll() error {
	if err := v.validateDefaults(); err != nil {
		return err
	}
	if err := v.validateLLMProviders(); err != nil {
		return err
	}
	if err := v.validateToolServers(); err != nil {
		return err
	}
	if err := v.validateAgents(); err != nil {
		return err
	}
	if err := v.validatePatterns(); err != nil {
		return err
	}
	return nil
}

func (v *Validator) validateDefaults() error {
	d := v.cfg.Defaults
	if d == nil {
		return nil
	}
	if d.LLMProvider != "" && !v.cfg.LLMProviderRegistry.Has(d.LLMProvider) {
		return NewValidationError("defaults", "", "llm_provider",
			fmt.Errorf("%w: %s", ErrLLMProviderNotFound, d.LLMProvider))
	}
	if d.SuccessPolicy != "" && !d.SuccessPolicy.IsValid() {
		return NewValidationError("defaults", "", "success_policy",
			fmt.Errorf("%w: %s", ErrInvalidValue, d.SuccessPolicy))
	}
	if d.ApplicationType != "" {
		if _, err := v.cfg.PatternRegistry.GetByApplicationType(d.ApplicationType); err != nil {
			return NewValidationError("defaults", "", "application_type", err)
		}
	}
	return nil
}

func (v *Validator) validateLLMProviders() error {
	for name, provider := range v.cfg.LLMProviderRegistry.GetAll() {
		if !provider.Type.IsValid() {
			return NewValidationError("llm_provider", name, "type",
				fmt.Errorf("%w: %s", ErrInvalidValue, provider.Type))
		}
		if provider.Model == "" {
			return NewValidationError("llm_provider", name, "model", ErrMissingRequiredField)
		}
		if provider.MaxToolResultTokens < 1000 {
			return NewValidationError("llm_provider", name, "max_tool_result_tokens",
				fmt.Errorf("%w: must be >= 1000", ErrInvalidValue))
		}
	}
	return nil
}

func (v *Validator) validateToolServers() error {
	for id, server := range v.cfg.ToolServerRegistry.GetAll() {
		if err := v.validateTransport(id, server.Transport); err != nil {
			return err
		}
		if server.Scrubbing != nil {
			for i, p := range server.Scrubbing.CustomPatterns {
				if p.Pattern == "" {
					return NewValidationError("tool_server", id,
						fmt.Sprintf("scrubbing.custom_patterns[%d].pattern", i), ErrMissingRequiredField)
				}
			}
		}
	}
	return nil
}

func (v *Validator) validateTransport(serverID string, t TransportConfig) error {
	if !t.Type.IsValid() {
		return NewValidationError("tool_server", serverID, "transport.type",
			fmt.Errorf("%w: %s", ErrInvalidValue, t.Type))
	}
	switch t.Type {
	case TransportTypeStdio:
		if t.Command == "" {
			return NewValidationError("tool_server", serverID, "transport.command", ErrMissingRequiredField)
		}
	case TransportTypeHTTP, TransportTypeSSE:
		if t.URL == "" {
			return NewValidationError("tool_server", serverID, "transport.url", ErrMissingRequiredField)
		}
	}
	return nil
}

func (v *Validator) validateAgents() error {
	for name, agent := range v.cfg.AgentRegistry.GetAll() {
		if !agent.Type.IsValid() {
			return NewValidationError("agent", name, "type",
				fmt.Errorf("%w: %s", ErrInvalidValue, agent.Type))
		}
		if agent.OutputSchema == "" {
			return NewValidationError("agent", name, "output_schema", ErrMissingRequiredField)
		}
		if agent.LLMProvider != "" && !v.cfg.LLMProviderRegistry.Has(agent.LLMProvider) {
			return NewValidationError("agent", name, "llm_provider",
				fmt.Errorf("%w: %s", ErrLLMProviderNotFound, agent.LLMProvider))
		}
		for _, serverID := range agent.ToolServers {
			if !v.cfg.ToolServerRegistry.Has(serverID) {
				return NewValidationError("agent", name, "tool_servers",
					fmt.Errorf("%w: %s", ErrToolServerNotFound, serverID))
			}
		}
	}
	return nil
}

func (v *Validator) validatePatterns() error {
	seenApplicationTypes := make(map[string]string) // applicationType -> owning pattern ID

	for patternID, pattern := range v.cfg.PatternRegistry.GetAll() {
		if len(pattern.ApplicationTypes) == 0 {
			return NewValidationError("pattern", patternID, "application_types", ErrMissingRequiredField)
		}
		for _, at := range pattern.ApplicationTypes {
			if owner, exists := seenApplicationTypes[at]; exists {
				return NewValidationError("pattern", patternID, "application_types",
					fmt.Errorf("%w: application type %q already handled by pattern %q", ErrInvalidValue, at, owner))
			}
			seenApplicationTypes[at] = patternID
		}

		if pattern.LLMProvider != "" && !v.cfg.LLMProviderRegistry.Has(pattern.LLMProvider) {
			return NewValidationError("pattern", patternID, "llm_provider",
				fmt.Errorf("%w: %s", ErrLLMProviderNotFound, pattern.LLMProvider))
		}
		for _, serverID := range pattern.ToolServers {
			if !v.cfg.ToolServerRegistry.Has(serverID) {
				return NewValidationError("pattern", patternID, "tool_servers",
					fmt.Errorf("%w: %s", ErrToolServerNotFound, serverID))
			}
		}

		if len(pattern.Steps) == 0 {
			return NewValidationError("pattern", patternID, "steps", ErrMissingRequiredField)
		}

		seenSteps := make(map[string]bool, len(pattern.Steps))
		for i, step := range pattern.Steps {
			if err := v.validateStep(patternID, i, step, seenSteps); err != nil {
				return err
			}
			seenSteps[step.Name] = true
		}
	}
	return nil
}

func (v *Validator) validateStep(patternID string, index int, step StepConfig, priorSteps map[string]bool) error {
	field := fmt.Sprintf("steps[%d]", index)

	if step.Name == "" {
		return NewValidationError("pattern", patternID, field+".name", ErrMissingRequiredField)
	}
	if priorSteps[step.Name] {
		return NewValidationError("pattern", patternID, field+".name",
			fmt.Errorf("%w: duplicate step name %q", ErrInvalidValue, step.Name))
	}
	if len(step.Agents) == 0 {
		return NewValidationError("pattern", patternID, field+".agents", ErrMissingRequiredField)
	}
	for j, sa := range step.Agents {
		if sa.Name == "" {
			return NewValidationError("pattern", patternID,
				fmt.Sprintf("%s.agents[%d].name", field, j), ErrMissingRequiredField)
		}
		if !v.cfg.AgentRegistry.Has(sa.Name) {
			return NewValidationError("pattern", patternID,
				fmt.Sprintf("%s.agents[%d].name", field, j),
				fmt.Errorf("%w: %s", ErrAgentNotFound, sa.Name))
		}
		if sa.LLMProvider != "" && !v.cfg.LLMProviderRegistry.Has(sa.LLMProvider) {
			return NewValidationError("pattern", patternID,
				fmt.Sprintf("%s.agents[%d].llm_provider", field, j),
				fmt.Errorf("%w: %s", ErrLLMProviderNotFound, sa.LLMProvider))
		}
		for _, serverID := range sa.ToolServers {
			if !v.cfg.ToolServerRegistry.Has(serverID) {
				return NewValidationError("pattern", patternID,
					fmt.Sprintf("%s.agents[%d].tool_servers", field, j),
					fmt.Errorf("%w: %s", ErrToolServerNotFound, serverID))
			}
		}
	}

	for _, predecessor := range step.RequiredPredecessors {
		if !priorSteps[predecessor] {
			return NewValidationError("pattern", patternID, field+".required_predecessors",
				fmt.Errorf("%w: predecessor %q must be declared earlier in the pattern", ErrInvalidReference, predecessor))
		}
	}

	if step.SuccessPolicy != "" && !step.SuccessPolicy.IsValid() {
		return NewValidationError("pattern", patternID, field+".success_policy",
			fmt.Errorf("%w: %s", ErrInvalidValue, step.SuccessPolicy))
	}

	for _, serverID := range step.ToolServers {
		if !v.cfg.ToolServerRegistry.Has(serverID) {
			return NewValidationError("pattern", patternID, field+".tool_servers",
				fmt.Errorf("%w: %s", ErrToolServerNotFound, serverID))
		}
	}

	return nil
}

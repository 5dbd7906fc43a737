package config

// Shared types used across configuration structs.

// TransportConfig defines tool-server transport configuration.
type TransportConfig struct {
	Type TransportType `yaml:"type" validate:"required"`

	// For stdio transport
	Command string            `yaml:"command,omitempty"`
	Args    []string          `yaml:"args,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`

	// For http/sse transport
	URL         string `yaml:"url,omitempty"`
	BearerToken string `yaml:"bearer_token,omitempty"`
	VerifySSL   *bool  `yaml:"verify_ssl,omitempty"`
	Timeout     int    `yaml:"timeout,omitempty"` // In seconds
}

// ScrubPattern defines an additional regex-based outbound parameter rejection
// rule, layered on top of the built-in government-identifier-shape check.
type ScrubPattern struct {
	Pattern     string `yaml:"pattern" validate:"required"`
	Description string `yaml:"description,omitempty"`
}

// ScrubbingConfig controls outbound tool-call argument scrubbing for a tool
// server. Unlike the teacher's inbound response masking, this rejects the
// call outright rather than redacting and passing it through.
type ScrubbingConfig struct {
	Enabled bool `yaml:"enabled"`

	// AllowlistKeys names argument keys exempt from the government-identifier
	// shape check (structurally similar-looking numeric strings the spec
	// explicitly permits, e.g. account/routing numbers).
	AllowlistKeys []string `yaml:"allowlist_keys,omitempty"`

	// CustomPatterns are additional rejection patterns beyond the built-in
	// SSN-shape check.
	CustomPatterns []ScrubPattern `yaml:"custom_patterns,omitempty"`
}

// StepAgentConfig represents an agent reference with step-level overrides.
// Used in step.agents[] (even for single-agent steps). Parallel execution
// within a step occurs when len(agents) > 1.
type StepAgentConfig struct {
	Name          string `yaml:"name" validate:"required"`
	LLMProvider   string `yaml:"llm_provider,omitempty"`
	MaxIterations *int   `yaml:"max_iterations,omitempty" validate:"omitempty,min=1"`
	ToolServers   []string `yaml:"tool_servers,omitempty"`
}

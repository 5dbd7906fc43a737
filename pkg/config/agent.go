// Package config provides configuration management for the underwriter
// system, including agent, pattern, tool server, and LLM provider
// configurations.
package config

import (
	"fmt"
	"sync"
)

// AgentSpec defines agent configuration (metadata only — see pkg/agent for
// instantiation).
type AgentSpec struct {
	// Agent type; only the default type exists, and every agent runs the
	// same bounded tool-call loop controller
	Type AgentType `yaml:"type,omitempty"`

	// Human-readable description
	Description string `yaml:"description,omitempty"`

	// Tool servers this agent may call
	ToolServers []string `yaml:"tool_servers" validate:"omitempty"`

	// PersonaFile is a path (relative to the config directory) to the
	// agent's persona/system-prompt text. Loaded once at startup by
	// agent.LoadPersonas, never per-invocation.
	PersonaFile string `yaml:"persona_file,omitempty"`

	// CustomInstructions are appended after the persona file's contents.
	CustomInstructions string `yaml:"custom_instructions,omitempty"`

	// OutputSchema names the symbolic schema (pkg/schema registry) the
	// agent's structured result must validate against.
	OutputSchema string `yaml:"output_schema" validate:"required"`

	// LLM provider for this agent
	LLMProvider string `yaml:"llm_provider,omitempty"`

	// MaxIterations bounds the agent's tool-call round loop.
	MaxIterations *int `yaml:"max_iterations,omitempty" validate:"omitempty,min=1"`
}

// AgentRegistry stores agent configurations in memory with thread-safe
// access.
type AgentRegistry struct {
	agents map[string]*AgentSpec
	mu     sync.RWMutex
}

// NewAgentRegistry creates a new agent registry.
func NewAgentRegistry(agents map[string]*AgentSpec) *AgentRegistry {
	copied := make(map[string]*AgentSpec, len(agents))
	for k, v := range agents {
		copied[k] = v
	}
	return &AgentRegistry{agents: copied}
}

// Get retrieves an agent configuration by name (thread-safe).
func (r *AgentRegistry) Get(name string) (*AgentSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, exists := r.agents[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	return agent, nil
}

// GetAll returns all agent configurations (thread-safe, returns copy).
func (r *AgentRegistry) GetAll() map[string]*AgentSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*AgentSpec, len(r.agents))
	for k, v := range r.agents {
		result[k] = v
	}
	return result
}

// Has checks if an agent exists in the registry (thread-safe).
func (r *AgentRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.agents[name]
	return exists
}

// Len returns the number of agents in the registry (thread-safe).
func (r *AgentRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}

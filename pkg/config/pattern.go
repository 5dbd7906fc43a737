package config

import (
	"fmt"
	"sync"
)

// PatternConfig defines a multi-step agent orchestration pattern —
// the configuration-level analogue of the teacher's agent chain, applied to
// loan application processing instead of alert triage.
type PatternConfig struct {
	// Application types this pattern handles (required, min 1)
	ApplicationTypes []string `yaml:"application_types" validate:"required,min=1"`

	// Human-readable description
	Description string `yaml:"description,omitempty"`

	// Steps to execute, in declared order (required, min 1)
	Steps []StepConfig `yaml:"steps" validate:"required,min=1,dive"`

	// Pattern-level LLM provider override
	LLMProvider string `yaml:"llm_provider,omitempty"`

	// Pattern-level max iterations override
	MaxIterations *int `yaml:"max_iterations,omitempty" validate:"omitempty,min=1"`

	// Pattern-level tool servers override
	ToolServers []string `yaml:"tool_servers,omitempty"`
}

// StepConfig defines a single step in a pattern.
type StepConfig struct {
	// Step name (required) — also the ledger key other steps reference in
	// required_predecessors and in conditional predicates.
	Name string `yaml:"name" validate:"required"`

	// Agents to execute (always an array, min 1).
	// A single agent: [{name: "CreditAgent"}]
	// Multiple agents (dispatched concurrently, joined before the next step):
	//   [{name: "CreditAgent"}, {name: "IncomeAgent"}]
	Agents []StepAgentConfig `yaml:"agents" validate:"required,min=1,dive"`

	// RequiredPredecessors names steps that must have completed successfully
	// before this step may run. Defaults to the immediately preceding step
	// in declaration order when empty.
	RequiredPredecessors []string `yaml:"required_predecessors,omitempty"`

	// Condition is a restricted boolean predicate (see pkg/orchestrate's
	// predicate evaluator) evaluated against the ledger before running this
	// step. An empty condition always runs. A false condition skips the step
	// without failing the run.
	Condition string `yaml:"condition,omitempty"`

	// ContinueOnFailure allows the pattern to proceed to later steps even if
	// this step's agent(s) fail, instead of failing the run outright.
	ContinueOnFailure bool `yaml:"continue_on_failure,omitempty"`

	// SuccessPolicy for a parallel step ("all" or "any"); ignored for
	// single-agent steps.
	SuccessPolicy SuccessPolicy `yaml:"success_policy,omitempty"`

	// Step-level max iterations override
	MaxIterations *int `yaml:"max_iterations,omitempty" validate:"omitempty,min=1"`

	// Step-level tool servers override
	ToolServers []string `yaml:"tool_servers,omitempty"`
}

// PatternRegistry stores pattern configurations in memory with thread-safe
// access.
type PatternRegistry struct {
	patterns map[string]*PatternConfig
	mu       sync.RWMutex
}

// NewPatternRegistry creates a new pattern registry.
func NewPatternRegistry(patterns map[string]*PatternConfig) *PatternRegistry {
	copied := make(map[string]*PatternConfig, len(patterns))
	for k, v := range patterns {
		copied[k] = v
	}
	return &PatternRegistry{patterns: copied}
}

// Get retrieves a pattern configuration by ID (thread-safe).
func (r *PatternRegistry) Get(patternID string) (*PatternConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pattern, exists := r.patterns[patternID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrPatternNotFound, patternID)
	}
	return pattern, nil
}

// GetByApplicationType retrieves the first pattern that handles the given
// application type (thread-safe).
func (r *PatternRegistry) GetByApplicationType(applicationType string) (*PatternConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	patternID := r.findPatternIDByApplicationType(applicationType)
	if patternID == "" {
		return nil, fmt.Errorf("%w for application type: %s", ErrPatternNotFound, applicationType)
	}
	return r.patterns[patternID], nil
}

// GetIDByApplicationType retrieves the pattern ID for the given application
// type (thread-safe).
func (r *PatternRegistry) GetIDByApplicationType(applicationType string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	patternID := r.findPatternIDByApplicationType(applicationType)
	if patternID == "" {
		return "", fmt.Errorf("%w for application type: %s", ErrPatternNotFound, applicationType)
	}
	return patternID, nil
}

// findPatternIDByApplicationType is an unexported helper; assumes the lock
// is held.
func (r *PatternRegistry) findPatternIDByApplicationType(applicationType string) string {
	for patternID, pattern := range r.patterns {
		for _, at := range pattern.ApplicationTypes {
			if at == applicationType {
				return patternID
			}
		}
	}
	return ""
}

// GetAll returns all pattern configurations (thread-safe, returns copy).
func (r *PatternRegistry) GetAll() map[string]*PatternConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*PatternConfig, len(r.patterns))
	for k, v := range r.patterns {
		result[k] = v
	}
	return result
}

// Has checks if a pattern exists in the registry (thread-safe).
func (r *PatternRegistry) Has(patternID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.patterns[patternID]
	return exists
}

// Len returns the number of patterns in the registry (thread-safe).
func (r *PatternRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.patterns)
}

// Package agent provides the core agent framework for the underwriter
// runtime. Agents assess loan applications using LLM calls and MCP tools.
package agent

import "context"

// Agent defines the interface every loan-processing agent implements.
// Agents are created per-execution, never shared across runs.
type Agent interface {
	// Execute runs the agent's assessment.
	// ctx carries the step timeout and cancellation signal.
	// execCtx provides all execution dependencies and state.
	// ledgerContext is the accumulated output of prior steps (empty for the
	// first step in a pattern).
	//
	// Returns (*ExecutionResult, nil) on completion — check Result.Status and
	// Result.Error for agent-level failures (LLM errors, tool failures).
	// Returns (nil, error) only for infrastructure failures where no
	// meaningful result exists.
	Execute(ctx context.Context, execCtx *ExecutionContext, ledgerContext string) (*ExecutionResult, error)
}

// ExecutionStatus represents the status of an agent execution.
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusActive    ExecutionStatus = "active"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusTimedOut  ExecutionStatus = "timed_out"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// ExecutionResult is returned by Agent.Execute.
type ExecutionResult struct {
	Status ExecutionStatus

	// StructuredOutput is the agent's raw JSON result, already validated
	// against its configured output schema (see pkg/schema).
	StructuredOutput string

	Error      error
	TokensUsed TokenUsage
}

// TokenUsage aggregates token consumption across multiple LLM calls in a
// single agent execution.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

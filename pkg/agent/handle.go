package agent

import (
	"context"
	"errors"
	"fmt"
)

// Controller defines the iteration strategy interface. This domain has one
// implementation — a bounded tool-call loop (see pkg/agent/controller) — but
// the interface is kept so Agent doesn't depend on the loop's internals.
type Controller interface {
	Run(ctx context.Context, execCtx *ExecutionContext, ledgerContext string) (*ExecutionResult, error)
}

// BaseAgent is the common agent implementation. It delegates iteration
// logic to a controller (strategy pattern).
type BaseAgent struct {
	controller Controller
}

// NewBaseAgent creates an agent with the given iteration controller.
// Panics if controller is nil (programming error in the factory).
func NewBaseAgent(controller Controller) *BaseAgent {
	if controller == nil {
		panic("NewBaseAgent: controller must not be nil")
	}
	return &BaseAgent{controller: controller}
}

// Execute runs the agent's assessment by delegating to the controller.
func (a *BaseAgent) Execute(ctx context.Context, execCtx *ExecutionContext, ledgerContext string) (*ExecutionResult, error) {
	result, err := a.controller.Run(ctx, execCtx, ledgerContext)

	// Use errors.Is on the returned error (not ctx.Err()) so a concurrent
	// context expiration doesn't misclassify an unrelated failure as
	// timed-out.
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &ExecutionResult{Status: ExecutionStatusTimedOut, Error: err}, nil
		}
		if errors.Is(err, context.Canceled) {
			return &ExecutionResult{Status: ExecutionStatusCancelled, Error: err}, nil
		}
		return &ExecutionResult{Status: ExecutionStatusFailed, Error: err}, nil
	}

	if result == nil {
		return &ExecutionResult{
			Status: ExecutionStatusFailed,
			Error:  fmt.Errorf("controller returned nil result"),
		}, nil
	}

	return result, nil
}

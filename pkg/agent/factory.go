package agent

import "fmt"

// AgentFactory creates Agent instances from resolved configuration.
type AgentFactory struct {
	controllerFactory ControllerFactory
}

// ControllerFactory creates controllers for an execution context.
// Implemented by pkg/agent/controller to avoid an import cycle.
type ControllerFactory interface {
	CreateController(execCtx *ExecutionContext) (Controller, error)
}

// NewAgentFactory creates a new agent factory.
func NewAgentFactory(controllerFactory ControllerFactory) *AgentFactory {
	return &AgentFactory{controllerFactory: controllerFactory}
}

// CreateAgent builds an Agent instance for the given execution context.
func (f *AgentFactory) CreateAgent(execCtx *ExecutionContext) (Agent, error) {
	if execCtx == nil || execCtx.Config == nil {
		return nil, fmt.Errorf("execution context and config must not be nil")
	}
	controller, err := f.controllerFactory.CreateController(execCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to create controller for agent %q: %w", execCtx.AgentName, err)
	}
	return NewBaseAgent(controller), nil
}

package controller

import "github.com/lendwell/underwriter/pkg/agent"

// Factory creates controllers. Implements agent.ControllerFactory.
//
// Unlike the teacher's factory, which dispatches on config.AgentType to
// choose between a default iterating controller and a synthesis
// controller, every agent in this domain runs the same bounded tool-call
// loop — intake, credit, income, and risk agents differ only in their
// resolved configuration (persona, tools, schema), not their iteration
// strategy.
type Factory struct{}

// NewFactory creates a new controller factory.
func NewFactory() *Factory {
	return &Factory{}
}

var _ agent.ControllerFactory = (*Factory)(nil)

// CreateController builds a Controller for the given execution context.
func (f *Factory) CreateController(execCtx *agent.ExecutionContext) (agent.Controller, error) {
	return New(), nil
}

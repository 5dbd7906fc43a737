// Package orchestrate runs a pattern's steps against a loan application:
// sequential by default, with an optional parallel join barrier per step and
// an optional conditional skip. Grounded on the teacher's
// pkg/queue/executor.go chain loop (fail-fast, continue_on_failure, context
// threading between stages), generalized from a fixed alert-triage chain to
// a configuration-declared pattern of steps.
package orchestrate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lendwell/underwriter/pkg/agent"
	"github.com/lendwell/underwriter/pkg/audit"
	"github.com/lendwell/underwriter/pkg/config"
	"github.com/lendwell/underwriter/pkg/decision"
	"github.com/lendwell/underwriter/pkg/ledger"
)

// Engine executes a pattern's steps for one application run.
type Engine struct {
	cfg           *config.Config
	agentFactory  *agent.AgentFactory
	promptBuilder agent.PromptBuilder
	llmClient     agent.LLMClient
	toolExecutor  agent.ToolExecutor
	personas      *agent.PersonaLoader
	recorder      audit.Recorder
}

// NewEngine wires an Engine from its dependencies. None may be nil.
func NewEngine(
	cfg *config.Config,
	agentFactory *agent.AgentFactory,
	promptBuilder agent.PromptBuilder,
	llmClient agent.LLMClient,
	toolExecutor agent.ToolExecutor,
	personas *agent.PersonaLoader,
	recorder audit.Recorder,
) *Engine {
	return &Engine{
		cfg:           cfg,
		agentFactory:  agentFactory,
		promptBuilder: promptBuilder,
		llmClient:     llmClient,
		toolExecutor:  toolExecutor,
		personas:      personas,
		recorder:      recorder,
	}
}

// RunInput describes one application run request.
type RunInput struct {
	RunID           string
	ApplicantID     string
	ApplicationType string
	ApplicationData string
}

// ErrStepFailed is wrapped into the error returned by Run when a step fails
// without ContinueOnFailure set, stopping the pattern fail-fast.
type ErrStepFailed struct {
	StepName string
	Cause    error
}

func (e *ErrStepFailed) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.StepName, e.Cause)
}

func (e *ErrStepFailed) Unwrap() error { return e.Cause }

// Run executes the pattern matching input.ApplicationType start to finish.
// Returns the assembled decision and the full ledger on success. On a
// fail-fast abort, returns the partial ledger alongside the error so the
// caller can still inspect what ran.
func (e *Engine) Run(ctx context.Context, input RunInput) (*decision.Decision, *ledger.RunLedger, error) {
	pattern, err := e.cfg.GetPatternByApplicationType(input.ApplicationType)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving pattern for application type %q: %w", input.ApplicationType, err)
	}

	patternID, err := e.cfg.PatternRegistry.GetIDByApplicationType(input.ApplicationType)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving pattern id for application type %q: %w", input.ApplicationType, err)
	}

	l := ledger.NewRunLedger(input.RunID, input.ApplicantID, input.ApplicationType, patternID)
	logger := slog.With("run_id", input.RunID, "pattern_id", patternID, "application_type", input.ApplicationType)

	e.emit(ctx, input.RunID, "", audit.EventRunStarted, "")

	for i, step := range pattern.Steps {
		if ctx.Err() != nil {
			return nil, l, fmt.Errorf("run %q cancelled: %w", input.RunID, ctx.Err())
		}

		predecessors := step.RequiredPredecessors
		if len(predecessors) == 0 && i > 0 {
			predecessors = []string{pattern.Steps[i-1].Name}
		}
		if blocker, blocked := firstUnsatisfiedPredecessor(l, predecessors); blocked {
			l.Append(ledger.StepRecord{
				StepName:   step.Name,
				Status:     "skipped",
				Skipped:    true,
				SkipReason: fmt.Sprintf("required predecessor %q did not complete successfully", blocker),
			})
			e.emit(ctx, input.RunID, step.Name, audit.EventStepSkipped, "predecessor "+blocker+" did not succeed")
			continue
		}

		if step.Condition != "" {
			shouldRun, err := e.evalCondition(step.Condition, l)
			if err != nil {
				logger.Error("condition evaluation failed, treating step as failed", "step", step.Name, "error", err)
				l.Append(ledger.StepRecord{StepName: step.Name, Status: "failed", Error: err.Error()})
				e.emit(ctx, input.RunID, step.Name, audit.EventStepFailed, err.Error())
				if !step.ContinueOnFailure {
					return nil, l, &ErrStepFailed{StepName: step.Name, Cause: err}
				}
				continue
			}
			if !shouldRun {
				l.Append(ledger.StepRecord{StepName: step.Name, Status: "skipped", Skipped: true, SkipReason: "condition evaluated false"})
				e.emit(ctx, input.RunID, step.Name, audit.EventStepSkipped, "condition evaluated false")
				continue
			}
		}

		e.emit(ctx, input.RunID, step.Name, audit.EventStepStarted, "")

		var stepFailed bool
		var stepErr error
		if len(step.Agents) == 1 {
			rec := e.executeStepAgent(ctx, input, pattern, step, step.Agents[0], l.BuildContext())
			l.Append(rec)
			stepFailed = rec.Error != ""
			if stepFailed {
				stepErr = fmt.Errorf("%s", rec.Error)
			}
		} else {
			records, aggFailed, aggErr := e.executeParallelStep(ctx, input, pattern, step, l.BuildContext())
			for _, rec := range records {
				l.Append(rec)
			}
			stepFailed = aggFailed
			stepErr = aggErr
		}

		if stepFailed {
			e.emit(ctx, input.RunID, step.Name, audit.EventStepFailed, errString(stepErr))
			if !step.ContinueOnFailure {
				return nil, l, &ErrStepFailed{StepName: step.Name, Cause: stepErr}
			}
			continue
		}
		e.emit(ctx, input.RunID, step.Name, audit.EventStepCompleted, "")
	}

	terminalStep := pattern.Steps[len(pattern.Steps)-1].Name
	d, err := decision.Assemble(l, terminalStep)
	if err != nil {
		// The terminal step was skipped (e.g. by a false condition) rather
		// than failed — decision.Assemble only turns a *failed* terminal
		// step into a manual-review fallback. A skipped or missing terminal
		// step always routes to manual review here too: there is no risk
		// assessment to trust.
		d = &decision.Decision{
			RunID:         input.RunID,
			ApplicantID:   input.ApplicantID,
			Decision:      decision.OutcomeManualReview,
			PrimaryReason: fmt.Sprintf("terminal step %q did not produce a decision: %v", terminalStep, err),
		}
	}

	if err := e.recorder.RecordRun(ctx, l, d); err != nil {
		logger.Error("failed to record run", "error", err)
	}
	e.emit(ctx, input.RunID, "", audit.EventRunCompleted, string(d.Decision))

	return d, l, nil
}

func (e *Engine) evalCondition(expr string, l *ledger.RunLedger) (bool, error) {
	pred, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return pred.Eval(l)
}

func (e *Engine) emit(ctx context.Context, runID, stepName string, typ audit.EventType, detail string) {
	evt := audit.Event{RunID: runID, StepName: stepName, Type: typ, Timestamp: time.Now(), Detail: detail}
	if err := e.recorder.RecordEvent(ctx, evt); err != nil {
		slog.Warn("failed to record audit event", "run_id", runID, "step", stepName, "type", typ, "error", err)
	}
}

// executeStepAgent resolves configuration and runs a single agent for a
// single-agent step.
func (e *Engine) executeStepAgent(
	ctx context.Context,
	input RunInput,
	pattern *config.PatternConfig,
	step config.StepConfig,
	stepAgent config.StepAgentConfig,
	ledgerContext string,
) ledger.StepRecord {
	startedAt := time.Now()

	resolvedCfg, err := agent.ResolveAgentConfig(e.cfg, pattern, step, stepAgent)
	if err != nil {
		return ledger.StepRecord{
			StepName: step.Name, AgentName: stepAgent.Name,
			StartedAt: startedAt, CompletedAt: time.Now(),
			Status: "failed", Error: err.Error(),
		}
	}
	resolvedCfg.PersonaText = e.personas.Get(stepAgent.Name)

	execCtx := &agent.ExecutionContext{
		RunID:           input.RunID,
		StepName:        step.Name,
		ExecutionID:     uuid.NewString(),
		AgentName:       stepAgent.Name,
		ApplicantID:     input.ApplicantID,
		ApplicationType: input.ApplicationType,
		ApplicationData: input.ApplicationData,
		Config:          resolvedCfg,
		LLMClient:       e.llmClient,
		ToolExecutor:    e.toolExecutor,
		PromptBuilder:   e.promptBuilder,
	}

	a, err := e.agentFactory.CreateAgent(execCtx)
	if err != nil {
		return ledger.StepRecord{
			StepName: step.Name, AgentName: stepAgent.Name,
			StartedAt: startedAt, CompletedAt: time.Now(),
			Status: "failed", Error: err.Error(),
		}
	}

	result, err := a.Execute(ctx, execCtx, ledgerContext)
	completedAt := time.Now()
	if err != nil {
		return ledger.StepRecord{
			StepName: step.Name, AgentName: stepAgent.Name,
			StartedAt: startedAt, CompletedAt: completedAt,
			Status: "failed", Error: err.Error(),
		}
	}

	rec := ledger.StepRecord{
		StepName: step.Name, AgentName: stepAgent.Name,
		StartedAt: startedAt, CompletedAt: completedAt,
		Status: string(result.Status),
	}
	if result.Status == agent.ExecutionStatusCompleted {
		rec.StructuredOutput = result.StructuredOutput
	} else if result.Error != nil {
		rec.Error = result.Error.Error()
	}
	return rec
}

// firstUnsatisfiedPredecessor returns the first predecessor step name that
// did not complete successfully, and whether any did.
func firstUnsatisfiedPredecessor(l *ledger.RunLedger, predecessors []string) (string, bool) {
	for _, p := range predecessors {
		if !l.Succeeded(p) {
			return p, true
		}
	}
	return "", false
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

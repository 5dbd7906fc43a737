package orchestrate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lendwell/underwriter/pkg/config"
	"github.com/lendwell/underwriter/pkg/ledger"
)

type indexedRecord struct {
	index int
	rec   ledger.StepRecord
}

// executeParallelStep dispatches every agent in a multi-agent step
// concurrently and joins on completion, grounded on the teacher's
// pkg/queue/executor.go executeStage goroutine-per-agent + channel + wg.Wait
// join barrier (generalized from a fixed "stage" concept to a pattern step).
//
// Per-agent results are recorded under a qualified ledger key ("step.agent")
// so each agent's output stays individually addressable; one aggregate
// record under the bare step name reflects the step's overall outcome per
// its success policy, so RequiredPredecessors and conditions can reference
// the step as a whole without caring how many agents ran inside it.
func (e *Engine) executeParallelStep(
	ctx context.Context,
	input RunInput,
	pattern *config.PatternConfig,
	step config.StepConfig,
	ledgerContext string,
) ([]ledger.StepRecord, bool, error) {
	results := make(chan indexedRecord, len(step.Agents))
	var wg sync.WaitGroup

	for i, sa := range step.Agents {
		wg.Add(1)
		go func(idx int, stepAgent config.StepAgentConfig) {
			defer wg.Done()
			rec := e.executeStepAgent(ctx, input, pattern, step, stepAgent, ledgerContext)
			rec.StepName = fmt.Sprintf("%s.%s", step.Name, stepAgent.Name)
			results <- indexedRecord{index: idx, rec: rec}
		}(i, sa)
	}

	wg.Wait()
	close(results)

	ordered := make([]ledger.StepRecord, len(step.Agents))
	for ir := range results {
		ordered[ir.index] = ir.rec
	}

	policy := step.SuccessPolicy
	if !policy.IsValid() {
		policy = e.cfg.Defaults.SuccessPolicy
	}
	if !policy.IsValid() {
		policy = config.SuccessPolicyAny
	}

	succeeded := 0
	var firstErr error
	for _, rec := range ordered {
		if rec.Error == "" {
			succeeded++
		} else if firstErr == nil {
			firstErr = fmt.Errorf("%s", rec.Error)
		}
	}

	var aggFailed bool
	switch policy {
	case config.SuccessPolicyAll:
		aggFailed = succeeded != len(ordered)
	default: // SuccessPolicyAny
		aggFailed = succeeded == 0
	}

	aggregate := ledger.StepRecord{
		StepName:    step.Name,
		AgentName:   fmt.Sprintf("%d agents (policy=%s)", len(ordered), policy),
		StartedAt:   earliestStart(ordered),
		CompletedAt: latestCompletion(ordered),
		Status:      "completed",
	}
	var stepErr error
	if aggFailed {
		aggregate.Status = "failed"
		if firstErr != nil {
			aggregate.Error = firstErr.Error()
		} else {
			aggregate.Error = fmt.Sprintf("success policy %q not met (%d/%d agents succeeded)", policy, succeeded, len(ordered))
		}
		stepErr = fmt.Errorf("%s", aggregate.Error)
	}

	return append(ordered, aggregate), aggFailed, stepErr
}

func earliestStart(recs []ledger.StepRecord) time.Time {
	if len(recs) == 0 {
		return time.Time{}
	}
	earliest := recs[0].StartedAt
	for _, r := range recs[1:] {
		if r.StartedAt.Before(earliest) {
			earliest = r.StartedAt
		}
	}
	return earliest
}

func latestCompletion(recs []ledger.StepRecord) time.Time {
	if len(recs) == 0 {
		return time.Time{}
	}
	latest := recs[0].CompletedAt
	for _, r := range recs[1:] {
		if r.CompletedAt.After(latest) {
			latest = r.CompletedAt
		}
	}
	return latest
}

// Package audit persists the per-run audit trail: one record per run, one
// timeline event per LLM round / tool call / step transition, and the final
// decision. Grounded on the teacher's pkg/database (pgx + golang-migrate) and
// pkg/services service-over-repository idiom, generalized from ent-backed
// session/stage records to a single Recorder interface with an in-memory and
// a Postgres-backed implementation.
package audit

import (
	"context"
	"time"

	"github.com/lendwell/underwriter/pkg/decision"
	"github.com/lendwell/underwriter/pkg/ledger"
)

// EventType is the closed set of timeline event kinds recorded during a run.
type EventType string

const (
	EventRunStarted    EventType = "run_started"
	EventStepStarted   EventType = "step_started"
	EventLLMRound      EventType = "llm_round"
	EventToolCall      EventType = "tool_call"
	EventStepSkipped   EventType = "step_skipped"
	EventStepFailed    EventType = "step_failed"
	EventStepCompleted EventType = "step_completed"
	EventRunCompleted  EventType = "run_completed"
)

// Event is one timeline entry. Detail carries kind-specific free text (a
// tool name, an iteration count, an error message) — the timeline is an
// audit trail, not a structured query target.
type Event struct {
	RunID     string
	StepName  string
	Type      EventType
	Timestamp time.Time
	Detail    string
}

// Recorder persists run events and final decisions. MemoryRecorder queues
// events on a buffered channel drained by one goroutine; PostgresRecorder
// writes each record synchronously, so its calls block on database I/O.
type Recorder interface {
	// RecordEvent appends one timeline event for a run.
	RecordEvent(ctx context.Context, evt Event) error

	// RecordRun persists the terminal ledger and assembled decision for a
	// completed run.
	RecordRun(ctx context.Context, l *ledger.RunLedger, d *decision.Decision) error

	// Close drains any buffered records and releases resources. Safe to call
	// more than once.
	Close(ctx context.Context) error
}

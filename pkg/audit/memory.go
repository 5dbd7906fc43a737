package audit

import (
	"context"
	"fmt"
	"sync"

	"github.com/lendwell/underwriter/pkg/decision"
	"github.com/lendwell/underwriter/pkg/ledger"
)

// runRecord is the in-memory record for one completed run.
type runRecord struct {
	ledger   *ledger.RunLedger
	decision *decision.Decision
}

// MemoryRecorder is the default Recorder — used in tests and whenever no
// Postgres DSN is configured. A single background goroutine drains a
// buffered channel of timeline events so concurrent steps never contend on
// the same mutex directly; Close waits for the drain loop to finish before
// returning.
type MemoryRecorder struct {
	queue chan Event
	done  chan struct{}

	mu        sync.RWMutex
	events    []Event
	runs      map[string]runRecord
	closeOnce sync.Once
}

const defaultQueueDepth = 256

// NewMemoryRecorder starts the drain goroutine and returns a ready recorder.
func NewMemoryRecorder() *MemoryRecorder {
	r := &MemoryRecorder{
		queue: make(chan Event, defaultQueueDepth),
		done:  make(chan struct{}),
		runs:  make(map[string]runRecord),
	}
	go r.drain()
	return r
}

func (r *MemoryRecorder) drain() {
	defer close(r.done)
	for evt := range r.queue {
		r.mu.Lock()
		r.events = append(r.events, evt)
		r.mu.Unlock()
	}
}

// RecordEvent enqueues a timeline event. Never blocks on I/O — only on the
// channel buffer, which is sized generously for a single run's event volume.
func (r *MemoryRecorder) RecordEvent(_ context.Context, evt Event) error {
	select {
	case r.queue <- evt:
		return nil
	default:
		return fmt.Errorf("audit event queue full for run %q", evt.RunID)
	}
}

// RecordRun stores the terminal ledger and decision for a completed run
// directly under the mutex; runs do not pass through the event queue.
func (r *MemoryRecorder) RecordRun(_ context.Context, l *ledger.RunLedger, d *decision.Decision) error {
	r.mu.Lock()
	r.runs[l.RunID] = runRecord{ledger: l, decision: d}
	r.mu.Unlock()
	return nil
}

// Close stops accepting new records and waits for the drain loop to finish.
func (r *MemoryRecorder) Close(_ context.Context) error {
	r.closeOnce.Do(func() {
		close(r.queue)
		<-r.done
	})
	return nil
}

// Events returns a copy of all recorded timeline events, for tests and the
// health/debug surface.
func (r *MemoryRecorder) Events() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Run returns the recorded ledger and decision for a run, if present.
func (r *MemoryRecorder) Run(runID string) (*ledger.RunLedger, *decision.Decision, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.runs[runID]
	if !ok {
		return nil, nil, false
	}
	return rec.ledger, rec.decision, true
}

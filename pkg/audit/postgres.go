package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lendwell/underwriter/pkg/database"
	"github.com/lendwell/underwriter/pkg/decision"
	"github.com/lendwell/underwriter/pkg/ledger"
)

// PostgresRecorder persists the run timeline and terminal ledger/decision to
// Postgres. Grounded on the teacher's pkg/database connection-pool idiom;
// unlike MemoryRecorder it writes synchronously — a run's audit trail must
// be durable before the engine reports completion, so there is no
// background drain loop to lose events on crash.
type PostgresRecorder struct {
	client *database.Client
}

var _ Recorder = (*PostgresRecorder)(nil)

// NewPostgresRecorder wraps an already-migrated database.Client.
func NewPostgresRecorder(client *database.Client) *PostgresRecorder {
	return &PostgresRecorder{client: client}
}

// RecordEvent inserts one timeline event.
func (r *PostgresRecorder) RecordEvent(ctx context.Context, evt Event) error {
	_, err := r.client.DB().ExecContext(ctx,
		`INSERT INTO audit_events (run_id, step_name, event_type, occurred_at, detail)
		 VALUES ($1, $2, $3, $4, $5)`,
		evt.RunID, evt.StepName, string(evt.Type), evt.Timestamp, evt.Detail,
	)
	if err != nil {
		return fmt.Errorf("recording audit event for run %q: %w", evt.RunID, err)
	}
	return nil
}

// RecordRun upserts the terminal ledger and decision for a completed run.
func (r *PostgresRecorder) RecordRun(ctx context.Context, l *ledger.RunLedger, d *decision.Decision) error {
	ledgerJSON, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshaling ledger for run %q: %w", l.RunID, err)
	}
	decisionJSON, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshaling decision for run %q: %w", l.RunID, err)
	}

	_, err = r.client.DB().ExecContext(ctx,
		`INSERT INTO audit_runs (run_id, applicant_id, application_type, pattern_id, ledger, decision)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (run_id) DO UPDATE SET
		   ledger = EXCLUDED.ledger,
		   decision = EXCLUDED.decision,
		   recorded_at = now()`,
		l.RunID, l.ApplicantID, l.ApplicationType, l.PatternID, ledgerJSON, decisionJSON,
	)
	if err != nil {
		return fmt.Errorf("recording run %q: %w", l.RunID, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *PostgresRecorder) Close(_ context.Context) error {
	return r.client.Close()
}

package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendwell/underwriter/pkg/audit"
	"github.com/lendwell/underwriter/pkg/database/testdb"
	"github.com/lendwell/underwriter/pkg/decision"
	"github.com/lendwell/underwriter/pkg/ledger"
)

func TestPostgresRecorder_RecordEventAndRun(t *testing.T) {
	client := testdb.NewClient(t)
	recorder := audit.NewPostgresRecorder(client)
	ctx := context.Background()

	runID := "run-postgres-1"
	require.NoError(t, recorder.RecordEvent(ctx, audit.Event{
		RunID: runID, StepName: "intake", Type: audit.EventStepStarted,
		Timestamp: time.Now().UTC(), Detail: "starting intake",
	}))
	require.NoError(t, recorder.RecordEvent(ctx, audit.Event{
		RunID: runID, StepName: "intake", Type: audit.EventStepCompleted,
		Timestamp: time.Now().UTC(), Detail: "intake complete",
	}))

	l := ledger.NewRunLedger(runID, "applicant-1", "consumer_installment", "p1")
	l.Append(ledger.StepRecord{StepName: "intake", AgentName: "intake-agent", Status: "completed"})
	d := &decision.Decision{
		RunID: runID, ApplicantID: "applicant-1",
		Decision: decision.OutcomeApproved, PrimaryReason: "clean file",
	}
	require.NoError(t, recorder.RecordRun(ctx, l, d))

	var count int
	row := client.DB().QueryRowContext(ctx, `SELECT count(*) FROM audit_events WHERE run_id = $1`, runID)
	require.NoError(t, row.Scan(&count))
	assert.Equal(t, 2, count)

	var storedApplicant, storedDecision string
	row = client.DB().QueryRowContext(ctx,
		`SELECT applicant_id, decision->>'decision' FROM audit_runs WHERE run_id = $1`, runID)
	require.NoError(t, row.Scan(&storedApplicant, &storedDecision))
	assert.Equal(t, "applicant-1", storedApplicant)
	assert.Equal(t, string(decision.OutcomeApproved), storedDecision)

	require.NoError(t, recorder.Close(ctx))
}

func TestPostgresRecorder_RecordRun_UpsertsOnConflict(t *testing.T) {
	client := testdb.NewClient(t)
	recorder := audit.NewPostgresRecorder(client)
	ctx := context.Background()

	runID := "run-postgres-2"
	l := ledger.NewRunLedger(runID, "applicant-2", "consumer_installment", "p1")
	first := &decision.Decision{RunID: runID, ApplicantID: "applicant-2", Decision: decision.OutcomeManualReview}
	require.NoError(t, recorder.RecordRun(ctx, l, first))

	second := &decision.Decision{RunID: runID, ApplicantID: "applicant-2", Decision: decision.OutcomeApproved}
	require.NoError(t, recorder.RecordRun(ctx, l, second))

	var storedDecision string
	row := client.DB().QueryRowContext(ctx,
		`SELECT decision->>'decision' FROM audit_runs WHERE run_id = $1`, runID)
	require.NoError(t, row.Scan(&storedDecision))
	assert.Equal(t, string(decision.OutcomeApproved), storedDecision)
}

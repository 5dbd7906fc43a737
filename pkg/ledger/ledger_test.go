package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLedgerAppendAndGet(t *testing.T) {
	l := NewRunLedger("run-1", "applicant-1", "consumer_installment", "consumer-installment-pattern")
	l.Append(StepRecord{StepName: "intake", AgentName: "IntakeAgent", Status: "completed", StructuredOutput: `{"complete":true}`})

	rec, ok := l.Get("intake")
	require.True(t, ok)
	assert.Equal(t, "IntakeAgent", rec.AgentName)
	assert.True(t, l.Succeeded("intake"))
}

func TestRunLedgerGetMissingStep(t *testing.T) {
	l := NewRunLedger("run-1", "applicant-1", "consumer_installment", "p1")
	_, ok := l.Get("risk")
	assert.False(t, ok)
	assert.False(t, l.Succeeded("risk"))
}

func TestRunLedgerSucceededFalseOnSkippedOrFailed(t *testing.T) {
	l := NewRunLedger("run-1", "applicant-1", "consumer_installment", "p1")
	l.Append(StepRecord{StepName: "income", Skipped: true, SkipReason: "condition false"})
	l.Append(StepRecord{StepName: "credit", Error: "tool unavailable"})

	assert.False(t, l.Succeeded("income"))
	assert.False(t, l.Succeeded("credit"))
}

func TestRunLedgerMarshalJSONDeterministic(t *testing.T) {
	l := NewRunLedger("run-1", "applicant-1", "consumer_installment", "p1")
	l.Append(StepRecord{StepName: "intake", AgentName: "IntakeAgent", StartedAt: time.Unix(0, 0).UTC(), CompletedAt: time.Unix(1, 0).UTC(), Status: "completed"})

	first, err := json.Marshal(l)
	require.NoError(t, err)
	second, err := json.Marshal(l)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRunLedgerBuildContext(t *testing.T) {
	l := NewRunLedger("run-1", "applicant-1", "consumer_installment", "p1")
	l.Append(StepRecord{StepName: "intake", AgentName: "IntakeAgent", StructuredOutput: `{"complete":true}`})
	l.Append(StepRecord{StepName: "income", AgentName: "IncomeAgent", Skipped: true, SkipReason: "not applicable"})

	ctx := l.BuildContext()
	assert.Contains(t, ctx, "Step 1: intake")
	assert.Contains(t, ctx, `{"complete":true}`)
	assert.Contains(t, ctx, "Skipped: not applicable")
}

func TestRunLedgerBuildContextEmpty(t *testing.T) {
	l := NewRunLedger("run-1", "applicant-1", "consumer_installment", "p1")
	assert.Equal(t, "", l.BuildContext())
}

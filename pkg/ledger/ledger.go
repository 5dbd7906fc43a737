// Package ledger accumulates each step's assessment into a deterministic,
// JSON-serializable record other steps and the Decision Assembler read.
// Grounded on the teacher's pkg/agent/context stage-context idiom, but
// carries structured step records instead of free-text stage analyses.
package ledger

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// StepRecord is one completed step's entry in the ledger. Field order here
// is the serialization order — deliberately explicit, never map iteration.
type StepRecord struct {
	StepName         string    `json:"step_name"`
	AgentName        string    `json:"agent_name"`
	StartedAt        time.Time `json:"started_at"`
	CompletedAt      time.Time `json:"completed_at"`
	Status           string    `json:"status"`
	StructuredOutput string    `json:"structured_output,omitempty"` // raw validated JSON
	Skipped          bool      `json:"skipped"`
	SkipReason       string    `json:"skip_reason,omitempty"`
	Error            string    `json:"error,omitempty"`
}

// RunLedger is the full accumulated record for one application run. Steps
// are appended in execution order, never reordered.
type RunLedger struct {
	RunID            string       `json:"run_id"`
	ApplicantID      string       `json:"applicant_id"`
	ApplicationType  string       `json:"application_type"`
	PatternID        string       `json:"pattern_id"`
	Steps            []StepRecord `json:"steps"`
}

// NewRunLedger creates an empty ledger for a run.
func NewRunLedger(runID, applicantID, applicationType, patternID string) *RunLedger {
	return &RunLedger{
		RunID:           runID,
		ApplicantID:     applicantID,
		ApplicationType: applicationType,
		PatternID:       patternID,
	}
}

// Append adds a completed step record to the ledger.
func (l *RunLedger) Append(rec StepRecord) {
	l.Steps = append(l.Steps, rec)
}

// Get returns the step record for the given step name, and whether it was
// found. Steps are searched in reverse so a re-run of a step (not expected
// in this domain's sequential model, but defensive) returns the latest.
func (l *RunLedger) Get(stepName string) (StepRecord, bool) {
	for i := len(l.Steps) - 1; i >= 0; i-- {
		if l.Steps[i].StepName == stepName {
			return l.Steps[i], true
		}
	}
	return StepRecord{}, false
}

// Succeeded reports whether the named step completed without error and
// wasn't skipped.
func (l *RunLedger) Succeeded(stepName string) bool {
	rec, ok := l.Get(stepName)
	return ok && !rec.Skipped && rec.Error == "" && rec.Status == "completed"
}

// MarshalJSON serializes the ledger deterministically: explicit struct
// field order, no maps, RFC3339 timestamps via the embedded time.Time
// encoding — round-trips byte-for-byte for identical input.
func (l *RunLedger) MarshalJSON() ([]byte, error) {
	type alias RunLedger // avoid infinite recursion through MarshalJSON
	return json.Marshal((*alias)(l))
}

// BuildContext formats completed step results into a context string for
// the next step's agent prompt, in the teacher's stage-context idiom
// (HTML-comment-delimited section headers, one per step).
func (l *RunLedger) BuildContext() string {
	if len(l.Steps) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("<!-- RUN_CONTEXT_START -->\n\n")

	for i, step := range l.Steps {
		sb.WriteString(fmt.Sprintf("### Step %d: %s (%s)\n\n", i+1, step.StepName, step.AgentName))
		switch {
		case step.Skipped:
			sb.WriteString(fmt.Sprintf("(Skipped: %s)", step.SkipReason))
		case step.Error != "":
			sb.WriteString(fmt.Sprintf("(Failed: %s)", step.Error))
		case step.StructuredOutput != "":
			sb.WriteString(step.StructuredOutput)
		default:
			sb.WriteString("(No structured output produced)")
		}
		sb.WriteString("\n\n")
	}

	sb.WriteString("<!-- RUN_CONTEXT_END -->")
	return sb.String()
}

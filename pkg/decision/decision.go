// Package decision assembles the final LoanDecision from a completed run's
// ledger. Grounded on the teacher's queue/executor_helpers.go
// extractFinalAnalysis + rule-table idiom, generalized from free-text
// analysis extraction to a typed rule table keyed on the closed
// Recommendation enum.
package decision

import (
	"encoding/json"
	"fmt"

	"github.com/lendwell/underwriter/pkg/config"
	"github.com/lendwell/underwriter/pkg/ledger"
	"github.com/lendwell/underwriter/pkg/schema"
)

// Outcome is the closed decision enum, distinct from the risk agent's own
// Recommendation enum (config.Recommendation) that it is derived from.
type Outcome string

const (
	OutcomeApproved     Outcome = "approved"
	OutcomeConditional  Outcome = "conditional"
	OutcomeDenied       Outcome = "denied"
	OutcomeManualReview Outcome = "manual_review"
)

// AssessmentSnapshot is the agent_assessments entry carried into a
// LoanDecision — a snapshot copy of one RunLedger step record, named per
// the assessment record fields rather than the ledger's internal ones.
type AssessmentSnapshot struct {
	AgentKey         string `json:"agent_key"`
	Status           string `json:"status"`
	StructuredResult string `json:"structured_result,omitempty"`
	Error            string `json:"error,omitempty"`
}

// Decision is the LoanDecision record: the final, pure output of a
// completed run.
type Decision struct {
	RunID             string                `json:"run_id"`
	ApplicantID       string                `json:"applicant_id"`
	Decision          Outcome               `json:"decision"`
	ApprovedAmount    string                `json:"approved_amount,omitempty"`
	InterestRate      string                `json:"interest_rate,omitempty"`
	TermMonths        int                   `json:"term_months,omitempty"`
	PrimaryReason     string                `json:"primary_reason"`
	SupportingReasons []string              `json:"supporting_reasons,omitempty"`
	Conditions        []string              `json:"conditions,omitempty"`
	AgentAssessments  []AssessmentSnapshot  `json:"agent_assessments"`
	ComplianceFlags   map[string]bool       `json:"compliance_flags"`
}

// ruleTable maps each risk recommendation onto the §4.4 decision,
// conditions-carry, and primary-reason-on-denial-path behavior. Pure
// data — no side effects, grounded on spec §4.4's closed table.
var ruleTable = map[config.Recommendation]Outcome{
	config.RecommendationApprove:             OutcomeApproved,
	config.RecommendationConditionalApproval: OutcomeConditional,
	config.RecommendationManualReview:        OutcomeManualReview,
	config.RecommendationDeny:                OutcomeDenied,
}

// Assemble is a pure function of the terminal ledger: it extracts the
// terminal step's structured risk result and applies the §4.4 rule table.
// No I/O, no clock, no randomness — same ledger in, same Decision out (§8
// purity law).
func Assemble(l *ledger.RunLedger, terminalStep string) (*Decision, error) {
	assessments := snapshotAssessments(l)
	flags := complianceFlags(l)

	rec, ok := l.Get(terminalStep)
	if !ok {
		return nil, fmt.Errorf("ledger has no record for terminal step %q", terminalStep)
	}
	if rec.Skipped {
		return nil, fmt.Errorf("terminal step %q was skipped, no decision can be assembled", terminalStep)
	}
	if rec.Error != "" {
		return &Decision{
			RunID:            l.RunID,
			ApplicantID:      l.ApplicantID,
			Decision:         OutcomeManualReview,
			PrimaryReason:    fmt.Sprintf("terminal step %q failed: %s", terminalStep, rec.Error),
			AgentAssessments: assessments,
			ComplianceFlags:  flags,
		}, nil
	}

	result, err := schema.Validate(schema.RiskResult, []byte(rec.StructuredOutput))
	if err != nil {
		return nil, fmt.Errorf("terminal step output failed schema validation: %w", err)
	}
	risk, ok := result.(*schema.RiskResultV1)
	if !ok {
		return nil, fmt.Errorf("terminal step output is not a risk result")
	}

	recommendation := config.Recommendation(risk.Recommendation)
	if !recommendation.IsValid() {
		return nil, fmt.Errorf("unrecognized recommendation %q", risk.Recommendation)
	}

	outcome, ok := ruleTable[recommendation]
	if !ok {
		return nil, fmt.Errorf("no rule-table entry for recommendation %q", recommendation)
	}

	d := &Decision{
		RunID:             l.RunID,
		ApplicantID:       l.ApplicantID,
		Decision:          outcome,
		PrimaryReason:     risk.PrimaryReason,
		SupportingReasons: risk.SupportingReasons,
		Conditions:        risk.Conditions,
		AgentAssessments:  assessments,
		ComplianceFlags:   flags,
	}

	switch outcome {
	case OutcomeApproved, OutcomeConditional:
		d.ApprovedAmount = risk.ApprovedAmount
		d.InterestRate = risk.InterestRate
		d.TermMonths = risk.TermMonths
	case OutcomeManualReview:
		if d.PrimaryReason == "" {
			d.PrimaryReason = "human review required"
		}
	}
	if d.PrimaryReason == "" {
		d.PrimaryReason = risk.Rationale
	}

	return d, nil
}

// snapshotAssessments copies the ledger's steps into the agent_assessments
// shape carried on the LoanDecision, in ledger (declaration) order.
func snapshotAssessments(l *ledger.RunLedger) []AssessmentSnapshot {
	out := make([]AssessmentSnapshot, 0, len(l.Steps))
	for _, step := range l.Steps {
		out = append(out, AssessmentSnapshot{
			AgentKey:         step.AgentName,
			Status:           step.Status,
			StructuredResult: step.StructuredOutput,
			Error:            step.Error,
		})
	}
	return out
}

// complianceFlags reports, per executed step, whether it completed cleanly
// — a rule-id (the step name) to pass/fail map, per §3's "map of rule-id →
// bool".
func complianceFlags(l *ledger.RunLedger) map[string]bool {
	flags := make(map[string]bool, len(l.Steps))
	for _, step := range l.Steps {
		flags[step.StepName] = l.Succeeded(step.StepName)
	}
	return flags
}

// MarshalJSON is explicit (rather than relying on struct tag order alone)
// so the decision round-trips deterministically, matching the ledger's
// serialization discipline.
func (d *Decision) MarshalJSON() ([]byte, error) {
	type alias Decision
	return json.Marshal((*alias)(d))
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Confidence grades how certain an eligibility decision is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Provenance identifies which decision strategy produced a verdict.
type Provenance string

const (
	// ByLLM marks verdicts produced by the language-model strategy.
	ByLLM Provenance = "llm"

	// ByFallback marks verdicts produced by the rule-based fallback.
	ByFallback Provenance = "fallback"
)

// CriterionVerdict is the eligibility decision for one criterion against
// one patient. A verdict is produced atomically: the evaluator either
// returns a complete verdict or none at all.
type CriterionVerdict struct {
	// Criterion is the rule this verdict decides.
	Criterion Criterion `json:"criterion" yaml:"criterion"`

	// Eligible reports whether the patient satisfies the criterion text.
	// For exclusion criteria, true means the exclusion applies.
	Eligible bool `json:"eligible" yaml:"eligible"`

	// Explanation is a short human-readable justification.
	Explanation string `json:"explanation" yaml:"explanation"`

	// Confidence grades the decision: HIGH, MEDIUM, or LOW.
	Confidence Confidence `json:"confidence" yaml:"confidence"`

	// EvaluatedBy records the strategy that produced the verdict.
	EvaluatedBy Provenance `json:"analyzed_by" yaml:"analyzed_by"`
}

// TrialVerdict aggregates the per-criterion verdicts for one trial.
type TrialVerdict struct {
	// TrialID identifies the trial this verdict covers.
	TrialID string `json:"trial_id" yaml:"trial_id"`

	// Title is the trial title, carried for display.
	Title string `json:"title" yaml:"title"`

	// CriteriaVerdicts holds one verdict per criterion, in criteria order.
	CriteriaVerdicts []CriterionVerdict `json:"criteria" yaml:"criteria"`

	// OverallEligible is true iff every inclusion verdict is eligible and
	// no exclusion verdict is eligible. A trial with no criteria is
	// vacuously eligible.
	OverallEligible bool `json:"overall_eligible" yaml:"overall_eligible"`

	// Summary is a one-line human-readable summary of the decision.
	Summary string `json:"eligibility_summary" yaml:"eligibility_summary"`
}

// WorkflowStatus is the terminal state of a workflow run.
type WorkflowStatus string

const (
	WorkflowCompleted WorkflowStatus = "completed"
	WorkflowFailed    WorkflowStatus = "failed"
)

// WorkflowResult is the aggregate outcome of one matching run. On failure
// it retains whatever context the completed stages produced.
type WorkflowResult struct {
	// DocumentPath is the patient document the run started from.
	DocumentPath string `json:"document_path" yaml:"document_path"`

	// Patient is the extracted record. Nil if the parsing stage failed.
	Patient *PatientRecord `json:"patient,omitempty" yaml:"patient,omitempty"`

	// Trials holds the candidate trials fetched for the patient.
	Trials []Trial `json:"trials,omitempty" yaml:"trials,omitempty"`

	// Verdicts holds one TrialVerdict per trial, in trial order.
	Verdicts []TrialVerdict `json:"eligibility_results,omitempty" yaml:"eligibility_results,omitempty"`

	// Status is completed or failed.
	Status WorkflowStatus `json:"status" yaml:"status"`

	// Error is the failure message when Status is failed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// EligibleCount returns the number of trials the patient is eligible for.
func (r *WorkflowResult) EligibleCount() int {
	n := 0
	for _, v := range r.Verdicts {
		if v.OverallEligible {
			n++
		}
	}
	return n
}

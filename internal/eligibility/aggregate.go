// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eligibility

import (
	"context"
	"fmt"
	"sync"

	"github.com/pdiddy/trialmatch/pkg/types"
)

// Aggregator runs the evaluator over every criterion of a trial and derives
// the trial-level verdict.
type Aggregator struct {
	evaluator     *Evaluator
	maxConcurrent int
}

// NewAggregator creates an aggregator. maxConcurrent bounds how many
// criteria are evaluated in parallel within one trial; values below one
// fall back to 4.
func NewAggregator(evaluator *Evaluator, maxConcurrent int) *Aggregator {
	if maxConcurrent < 1 {
		maxConcurrent = 4
	}
	return &Aggregator{evaluator: evaluator, maxConcurrent: maxConcurrent}
}

// Analyze evaluates all criteria of one trial against the patient and
// computes the trial verdict. Criteria are independent, so evaluations fan
// out across a bounded set of goroutines; each writes only its own slot, so
// result order always matches criteria order. The patient is eligible
// overall iff every inclusion criterion is met and no exclusion criterion
// applies; a trial with no criteria is vacuously eligible.
func (a *Aggregator) Analyze(ctx context.Context, patient *types.PatientRecord, trial *types.Trial) types.TrialVerdict {
	verdicts := make([]types.CriterionVerdict, len(trial.Criteria))

	sem := make(chan struct{}, a.maxConcurrent)
	var wg sync.WaitGroup

	for i, criterion := range trial.Criteria {
		wg.Add(1)
		go func(i int, criterion types.Criterion) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			verdicts[i] = a.evaluator.Evaluate(ctx, patient, criterion, trial)
		}(i, criterion)
	}
	wg.Wait()

	overall := overallEligible(verdicts)

	return types.TrialVerdict{
		TrialID:          trial.TrialID,
		Title:            trial.Title,
		CriteriaVerdicts: verdicts,
		OverallEligible:  overall,
		Summary:          summarize(verdicts, overall),
	}
}

// AnalyzeAll produces one TrialVerdict per input trial, in input order. No
// trial is dropped: when every criterion evaluation degrades to the
// fallback the trial is still represented by its verdict.
func (a *Aggregator) AnalyzeAll(ctx context.Context, patient *types.PatientRecord, trials []types.Trial) []types.TrialVerdict {
	results := make([]types.TrialVerdict, len(trials))
	for i := range trials {
		results[i] = a.Analyze(ctx, patient, &trials[i])
	}
	return results
}

// overallEligible applies the eligibility invariant: all inclusion verdicts
// eligible and no exclusion verdict eligible. Both quantifiers hold
// vacuously over an empty criteria set.
func overallEligible(verdicts []types.CriterionVerdict) bool {
	for _, v := range verdicts {
		switch v.Criterion.Type {
		case types.Inclusion:
			if !v.Eligible {
				return false
			}
		case types.Exclusion:
			if v.Eligible {
				return false
			}
		}
	}
	return true
}

// summarize builds the one-line decision summary. The met count is
// descriptive: it counts eligible verdicts regardless of criterion type and
// is independent of the eligibility decision itself.
func summarize(verdicts []types.CriterionVerdict, overall bool) string {
	met := 0
	for _, v := range verdicts {
		if v.Eligible {
			met++
		}
	}

	decision := "NOT ELIGIBLE"
	if overall {
		decision = "ELIGIBLE"
	}
	return fmt.Sprintf("Patient is %s. Meets %d/%d criteria.", decision, met, len(verdicts))
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workflow sequences the matching pipeline: extract the patient
// record, fetch candidate trials, analyze eligibility, finalize. Stages run
// linearly; a stage error fails the run while keeping everything the
// earlier stages produced.
package workflow

import (
	"context"
	"fmt"

	"github.com/pdiddy/trialmatch/internal/eligibility"
	"github.com/pdiddy/trialmatch/internal/patient"
	"github.com/pdiddy/trialmatch/internal/telemetry"
	"github.com/pdiddy/trialmatch/internal/trials"
	"github.com/pdiddy/trialmatch/pkg/types"
)

// Searcher abstracts the trial search collaborator so tests and the
// sample mode can substitute fixed data.
type Searcher interface {
	Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.Trial, error)
}

// Coordinator wires the pipeline stages together.
type Coordinator struct {
	extractor  patient.Extractor
	searcher   Searcher
	aggregator *eligibility.Aggregator
	sink       telemetry.Sink
	searchCfg  types.SearchConfig
}

// New creates a coordinator. A nil sink is replaced by the no-op sink.
func New(extractor patient.Extractor, searcher Searcher, aggregator *eligibility.Aggregator, sink telemetry.Sink, searchCfg types.SearchConfig) *Coordinator {
	if sink == nil {
		sink = telemetry.Nop{}
	}
	return &Coordinator{
		extractor:  extractor,
		searcher:   searcher,
		aggregator: aggregator,
		sink:       sink,
		searchCfg:  searchCfg,
	}
}

// Run executes the full pipeline for one patient document. It always
// returns a structured result: on stage failure the result carries
// status "failed", the error message, and all partial context gathered
// before the failure. Criterion-level evaluation failures never fail the
// run; the evaluator absorbs them.
func (c *Coordinator) Run(ctx context.Context, documentPath string) types.WorkflowResult {
	result := types.WorkflowResult{DocumentPath: documentPath}

	c.sink.Step("start_workflow", map[string]any{"document": documentPath})

	// Parsing.
	c.sink.Step("parsing_document", map[string]any{"status": "starting", "file": documentPath})
	record, err := patient.ExtractRecord(ctx, c.extractor, documentPath)
	if err != nil {
		return c.fail(result, "document_processing_error", err)
	}
	result.Patient = record
	c.sink.Step("parsed_document", map[string]any{
		"name":            record.Name,
		"num_allergies":   len(record.Allergies),
		"num_conditions":  len(record.Conditions),
		"num_lab_results": len(record.LabResults),
	})

	// Fetching.
	query := trials.BuildQuery(record, c.searchCfg.DefaultCondition)
	c.sink.Step("fetching_trials", map[string]any{"status": "starting", "query": query})
	trialList, err := c.searcher.Search(ctx, query, c.searchCfg)
	if err != nil {
		return c.fail(result, "clinical_trials_error", err)
	}
	result.Trials = trialList
	c.sink.Step("fetched_trials", map[string]any{"num_trials": len(trialList)})

	// Analyzing. Evaluation never errors, but honor cancellation of the
	// run as a stage failure.
	c.sink.Step("analyzing_eligibility", map[string]any{"status": "starting", "num_trials": len(trialList)})
	result.Verdicts = c.aggregator.AnalyzeAll(ctx, record, trialList)
	if err := ctx.Err(); err != nil {
		return c.fail(result, "eligibility_analysis_error", fmt.Errorf("analysis interrupted: %w", err))
	}
	c.sink.Step("eligibility_analysis", map[string]any{
		"num_trials_analyzed": len(result.Verdicts),
		"num_eligible_trials": result.EligibleCount(),
	})

	// Finalizing.
	result.Status = types.WorkflowCompleted
	c.sink.Step("end_workflow", map[string]any{
		"status":          "completed",
		"total_trials":    len(result.Trials),
		"eligible_trials": result.EligibleCount(),
	})
	return result
}

// fail marks the result failed, records the error event, and returns the
// result with all partial context intact.
func (c *Coordinator) fail(result types.WorkflowResult, name string, err error) types.WorkflowResult {
	result.Status = types.WorkflowFailed
	result.Error = err.Error()
	c.sink.Error(name, err.Error(), map[string]any{"document": result.DocumentPath})
	return result
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package eligibility decides whether a patient meets a trial's eligibility
// criteria. The primary strategy asks a Generative AI model to reason about
// one criterion at a time; a deterministic rule-based fallback takes over
// whenever the model is unavailable or its answer cannot be read.
package eligibility

import (
	"context"
	"strings"

	"github.com/pdiddy/trialmatch/pkg/types"
)

// Backend abstracts the text-completion API so tests can supply a mock.
// Implementations complete a single prompt and return the raw response text.
type Backend interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// Evaluator decides eligibility for single criteria. The zero value is not
// usable; construct with NewEvaluator.
type Evaluator struct {
	backend Backend
	cfg     types.EligibilityConfig
}

// NewEvaluator creates an evaluator backed by the given completion backend.
// A nil backend is allowed: every evaluation then uses the rule-based
// fallback.
func NewEvaluator(backend Backend, cfg types.EligibilityConfig) *Evaluator {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.1
	}
	return &Evaluator{backend: backend, cfg: cfg}
}

// Evaluate decides one criterion for one patient. It never returns an
// error: any backend or parse failure degrades to the rule-based fallback,
// so the caller always receives a complete verdict.
func (e *Evaluator) Evaluate(ctx context.Context, patient *types.PatientRecord, criterion types.Criterion, trial *types.Trial) types.CriterionVerdict {
	if e.backend == nil {
		return fallbackVerdict(patient, criterion)
	}

	prompt, err := renderPrompt(patient, criterion, trial)
	if err != nil {
		return fallbackVerdict(patient, criterion)
	}

	callCtx := ctx
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	response, err := e.backend.Complete(callCtx, prompt, e.cfg.MaxTokens, e.cfg.Temperature)
	if err != nil {
		return fallbackVerdict(patient, criterion)
	}

	verdict, ok := parseCompletion(response, criterion)
	if !ok {
		return fallbackVerdict(patient, criterion)
	}
	return verdict
}

// parseCompletion scans the model response for the three labeled lines
// (ELIGIBLE:, EXPLANATION:, CONFIDENCE:). Missing lines keep their
// defaults; a response with none of the labels at all is unreadable and
// reports ok=false so the caller can fall back.
func parseCompletion(response string, criterion types.Criterion) (types.CriterionVerdict, bool) {
	verdict := types.CriterionVerdict{
		Criterion:   criterion,
		Eligible:    false,
		Explanation: "Unable to determine eligibility",
		Confidence:  types.ConfidenceLow,
		EvaluatedBy: types.ByLLM,
	}

	found := false
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "ELIGIBLE:"):
			value := strings.TrimSpace(strings.TrimPrefix(line, "ELIGIBLE:"))
			verdict.Eligible = strings.EqualFold(value, "YES")
			found = true
		case strings.HasPrefix(line, "EXPLANATION:"):
			verdict.Explanation = strings.TrimSpace(strings.TrimPrefix(line, "EXPLANATION:"))
			found = true
		case strings.HasPrefix(line, "CONFIDENCE:"):
			value := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(line, "CONFIDENCE:")))
			switch types.Confidence(value) {
			case types.ConfidenceHigh, types.ConfidenceMedium, types.ConfidenceLow:
				verdict.Confidence = types.Confidence(value)
			}
			found = true
		}
	}

	return verdict, found
}

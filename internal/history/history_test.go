// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/trialmatch/pkg/types"
)

func testResult() *types.WorkflowResult {
	age := 55
	return &types.WorkflowResult{
		DocumentPath: "patients/note.txt",
		Status:       types.WorkflowCompleted,
		Patient: &types.PatientRecord{
			Name:       "John Doe",
			Age:        &age,
			Allergies:  []string{"Penicillin"},
			Conditions: []string{"Diabetes"},
		},
		Verdicts: []types.TrialVerdict{
			{
				TrialID:         "NCT01234567",
				Title:           "Diabetes Management Study",
				OverallEligible: true,
				Summary:         "Patient is ELIGIBLE. Meets 2/2 criteria.",
				CriteriaVerdicts: []types.CriterionVerdict{
					{
						Criterion:   types.Criterion{Text: "Age 18-75 years", Type: types.Inclusion},
						Eligible:    true,
						Explanation: "Patient age (55) vs required range (18-75)",
						Confidence:  types.ConfidenceMedium,
						EvaluatedBy: types.ByFallback,
					},
					{
						Criterion:   types.Criterion{Text: "Diagnosed with Type 2 Diabetes", Type: types.Inclusion},
						Eligible:    true,
						Explanation: "Diabetes found in patient conditions",
						Confidence:  types.ConfidenceHigh,
						EvaluatedBy: types.ByLLM,
					},
				},
			},
			{
				TrialID:         "NCT07654321",
				Title:           "Insulin Therapy Study",
				OverallEligible: false,
				Summary:         "Patient is NOT ELIGIBLE. Meets 0/1 criteria.",
				CriteriaVerdicts: []types.CriterionVerdict{
					{
						Criterion:   types.Criterion{Text: "Age 40-50 years", Type: types.Inclusion},
						Eligible:    false,
						Explanation: "Patient age (55) vs required range (40-50)",
						Confidence:  types.ConfidenceMedium,
						EvaluatedBy: types.ByFallback,
					},
				},
			},
		},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(types.HistoryConfig{HistoryDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndShow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	runID, err := store.Save(ctx, testResult())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(runID, "run-") {
		t.Errorf("runID = %q", runID)
	}

	run, err := store.Show(ctx, runID)
	if err != nil {
		t.Fatal(err)
	}

	if run.PatientName != "John Doe" || run.Status != string(types.WorkflowCompleted) {
		t.Errorf("run = %+v", run.RunSummary)
	}
	if run.TotalTrials != 2 || run.EligibleTrials != 1 {
		t.Errorf("counts = %d/%d, want 2/1", run.EligibleTrials, run.TotalTrials)
	}
	if run.Patient == nil || run.Patient.Conditions[0] != "Diabetes" {
		t.Errorf("Patient = %+v", run.Patient)
	}
	if len(run.Verdicts) != 2 {
		t.Fatalf("got %d verdicts", len(run.Verdicts))
	}

	first := run.Verdicts[0]
	if first.TrialID != "NCT01234567" || !first.OverallEligible {
		t.Errorf("first verdict = %+v", first)
	}
	if len(first.CriteriaVerdicts) != 2 {
		t.Fatalf("got %d criterion verdicts", len(first.CriteriaVerdicts))
	}
	cv := first.CriteriaVerdicts[0]
	if cv.Criterion.Type != types.Inclusion || cv.Confidence != types.ConfidenceMedium || cv.EvaluatedBy != types.ByFallback {
		t.Errorf("criterion verdict = %+v", cv)
	}
}

func TestShowUnknownRun(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Show(context.Background(), "run-missing"); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }
	first, err := store.Save(ctx, testResult())
	if err != nil {
		t.Fatal(err)
	}

	store.now = func() time.Time { return base.Add(time.Minute) }
	second, err := store.Save(ctx, testResult())
	if err != nil {
		t.Fatal(err)
	}

	runs, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs", len(runs))
	}
	if runs[0].RunID != second || runs[1].RunID != first {
		t.Errorf("order = %s, %s", runs[0].RunID, runs[1].RunID)
	}
}

func TestListRespectsMaxResults(t *testing.T) {
	store, err := NewStore(types.HistoryConfig{HistoryDir: t.TempDir(), MaxResults: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		offset := time.Duration(i) * time.Second
		store.now = func() time.Time { return base.Add(offset) }
		if _, err := store.Save(ctx, testResult()); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("got %d runs, want 1", len(runs))
	}
}

func TestSearchCriteria(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	runID, err := store.Save(ctx, testResult())
	if err != nil {
		t.Fatal(err)
	}

	hits, err := store.Search(ctx, "diabetes")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits: %+v", len(hits), hits)
	}
	if hits[0].RunID != runID || hits[0].TrialID != "NCT01234567" {
		t.Errorf("hit = %+v", hits[0])
	}
	if !hits[0].Eligible {
		t.Error("hit should carry the verdict outcome")
	}

	none, err := store.Search(ctx, "hypertension")
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("unexpected hits: %+v", none)
	}
}

func TestSaveFailedRunWithoutVerdicts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	result := &types.WorkflowResult{
		DocumentPath: "patients/bad.pdf",
		Status:       types.WorkflowFailed,
		Error:        "extracting document: unreadable scan",
	}
	runID, err := store.Save(ctx, result)
	if err != nil {
		t.Fatal(err)
	}

	run, err := store.Show(ctx, runID)
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != string(types.WorkflowFailed) || run.Error == "" {
		t.Errorf("run = %+v", run)
	}
	if run.Patient != nil || len(run.Verdicts) != 0 {
		t.Errorf("failed run should have no patient or verdicts: %+v", run)
	}
}

func TestExportRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	runID, err := store.Save(ctx, testResult())
	if err != nil {
		t.Fatal(err)
	}

	yamlPath, err := store.ExportYAML(ctx, runID)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(yamlPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "NCT01234567") {
		t.Error("YAML export should contain trial IDs")
	}

	jsonPath, err := store.ExportJSON(ctx, runID)
	if err != nil {
		t.Fatal(err)
	}
	data, err = os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"run_id"`) {
		t.Error("JSON export should use snake_case keys")
	}
}

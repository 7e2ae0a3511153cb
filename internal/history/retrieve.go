// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pdiddy/trialmatch/pkg/types"
)

// RunSummary is the per-run line shown in history listings.
type RunSummary struct {
	RunID          string    `json:"run_id" yaml:"run_id"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
	Document       string    `json:"document" yaml:"document"`
	PatientName    string    `json:"patient_name" yaml:"patient_name"`
	Status         string    `json:"status" yaml:"status"`
	TotalTrials    int       `json:"total_trials" yaml:"total_trials"`
	EligibleTrials int       `json:"eligible_trials" yaml:"eligible_trials"`
}

// Run is a fully reconstructed match run.
type Run struct {
	RunSummary `yaml:",inline"`
	Error      string               `json:"error,omitempty" yaml:"error,omitempty"`
	Patient    *types.PatientRecord `json:"patient,omitempty" yaml:"patient,omitempty"`
	Verdicts   []types.TrialVerdict `json:"verdicts" yaml:"verdicts"`
}

// SearchHit is one criterion verdict matched by a full-text search.
type SearchHit struct {
	RunID       string `json:"run_id" yaml:"run_id"`
	TrialID     string `json:"trial_id" yaml:"trial_id"`
	Criterion   string `json:"criterion" yaml:"criterion"`
	Explanation string `json:"explanation" yaml:"explanation"`
	Eligible    bool   `json:"eligible" yaml:"eligible"`
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, document, patient_name, status, total_trials, eligible_trials
		 FROM runs ORDER BY created_at DESC LIMIT ?`, s.maxResults)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// Show reconstructs a single run with its trial and criterion verdicts.
func (s *Store) Show(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, document, patient_name, status, total_trials, eligible_trials, error, patient
		 FROM runs WHERE id = ?`, runID)

	var (
		run         Run
		createdAt   string
		errMsg      sql.NullString
		patientJSON sql.NullString
	)
	err := row.Scan(&run.RunID, &createdAt, &run.Document, &run.PatientName,
		&run.Status, &run.TotalTrials, &run.EligibleTrials, &errMsg, &patientJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %s not found", runID)
		}
		return nil, fmt.Errorf("looking up run: %w", err)
	}

	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	if patientJSON.Valid && patientJSON.String != "" {
		var patient types.PatientRecord
		if err := json.Unmarshal([]byte(patientJSON.String), &patient); err == nil {
			run.Patient = &patient
		}
	}

	verdicts, err := s.loadVerdicts(ctx, runID)
	if err != nil {
		return nil, err
	}
	run.Verdicts = verdicts

	return &run, nil
}

// Search runs an FTS5 match over criterion text and explanations across
// all stored runs, ranked by relevance.
func (s *Store) Search(ctx context.Context, query string) ([]SearchHit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cv.run_id, cv.trial_id, cv.criterion, cv.explanation, cv.eligible
		 FROM criteria_fts
		 JOIN criterion_verdicts cv ON cv.rowid = criteria_fts.rowid
		 WHERE criteria_fts MATCH ?
		 ORDER BY criteria_fts.rank LIMIT ?`, query, s.maxResults)
	if err != nil {
		return nil, fmt.Errorf("searching history: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var hit SearchHit
		if err := rows.Scan(&hit.RunID, &hit.TrialID, &hit.Criterion, &hit.Explanation, &hit.Eligible); err != nil {
			return nil, fmt.Errorf("scanning search hit: %w", err)
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

func (s *Store) loadVerdicts(ctx context.Context, runID string) ([]types.TrialVerdict, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT trial_id, title, overall_eligible, summary
		 FROM trial_verdicts WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("loading trial verdicts: %w", err)
	}
	defer rows.Close()

	var verdicts []types.TrialVerdict
	for rows.Next() {
		var v types.TrialVerdict
		if err := rows.Scan(&v.TrialID, &v.Title, &v.OverallEligible, &v.Summary); err != nil {
			return nil, fmt.Errorf("scanning trial verdict: %w", err)
		}
		verdicts = append(verdicts, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range verdicts {
		criteria, err := s.loadCriterionVerdicts(ctx, runID, verdicts[i].TrialID)
		if err != nil {
			return nil, err
		}
		verdicts[i].CriteriaVerdicts = criteria
	}
	return verdicts, nil
}

func (s *Store) loadCriterionVerdicts(ctx context.Context, runID, trialID string) ([]types.CriterionVerdict, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT criterion, type, eligible, explanation, confidence, evaluated_by
		 FROM criterion_verdicts WHERE run_id = ? AND trial_id = ? ORDER BY position`, runID, trialID)
	if err != nil {
		return nil, fmt.Errorf("loading criterion verdicts: %w", err)
	}
	defer rows.Close()

	var verdicts []types.CriterionVerdict
	for rows.Next() {
		var (
			v             types.CriterionVerdict
			criterionType string
			confidence    string
			evaluatedBy   string
		)
		if err := rows.Scan(&v.Criterion.Text, &criterionType, &v.Eligible,
			&v.Explanation, &confidence, &evaluatedBy); err != nil {
			return nil, fmt.Errorf("scanning criterion verdict: %w", err)
		}
		v.Criterion.Type = types.CriterionType(criterionType)
		v.Confidence = types.Confidence(confidence)
		v.EvaluatedBy = types.Provenance(evaluatedBy)
		verdicts = append(verdicts, v)
	}
	return verdicts, rows.Err()
}

// scanSummary reads one listing row.
func scanSummary(rows *sql.Rows) (RunSummary, error) {
	var (
		summary   RunSummary
		createdAt string
	)
	if err := rows.Scan(&summary.RunID, &createdAt, &summary.Document,
		&summary.PatientName, &summary.Status, &summary.TotalTrials, &summary.EligibleTrials); err != nil {
		return RunSummary{}, fmt.Errorf("scanning run: %w", err)
	}
	summary.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return summary, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists completed match runs and makes past verdicts
// searchable. Each workflow run becomes one row in the runs table plus
// one row per trial and per criterion verdict; criterion text and
// explanations feed an FTS5 index.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/trialmatch/pkg/types"
)

const dbFile = "matches.db"

// Store manages the match history SQLite database.
type Store struct {
	db         *sql.DB
	historyDir string
	maxResults int
	now        func() time.Time
}

// NewStore opens or creates the history database at
// historyDir/matches.db, creating the schema if it does not exist.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.HistoryDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(cfg.HistoryDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		historyDir: cfg.HistoryDir,
		maxResults: maxResults,
		now:        time.Now,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			document TEXT,
			patient_name TEXT,
			patient JSON,
			status TEXT NOT NULL,
			error TEXT,
			total_trials INTEGER,
			eligible_trials INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS trial_verdicts (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			position INTEGER NOT NULL,
			trial_id TEXT,
			title TEXT,
			overall_eligible INTEGER,
			summary TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trial_verdicts_run ON trial_verdicts(run_id)`,
		`CREATE TABLE IF NOT EXISTS criterion_verdicts (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			trial_id TEXT,
			position INTEGER NOT NULL,
			criterion TEXT,
			type TEXT,
			eligible INTEGER,
			explanation TEXT,
			confidence TEXT,
			evaluated_by TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_criterion_verdicts_run ON criterion_verdicts(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='criteria_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE criteria_fts USING fts5(criterion, explanation, content=criterion_verdicts, content_rowid=rowid)`,
			`CREATE TRIGGER criterion_verdicts_ai AFTER INSERT ON criterion_verdicts BEGIN
				INSERT INTO criteria_fts(rowid, criterion, explanation) VALUES (new.rowid, new.criterion, new.explanation);
			END`,
			`CREATE TRIGGER criterion_verdicts_ad AFTER DELETE ON criterion_verdicts BEGIN
				INSERT INTO criteria_fts(criteria_fts, rowid, criterion, explanation) VALUES('delete', old.rowid, old.criterion, old.explanation);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Save records one completed or failed workflow run and returns its
// generated run ID.
func (s *Store) Save(ctx context.Context, result *types.WorkflowResult) (string, error) {
	createdAt := s.now().UTC()
	runID := "run-" + createdAt.Format("20060102-150405.000000000")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var patientJSON []byte
	patientName := ""
	if result.Patient != nil {
		patientJSON, _ = json.Marshal(result.Patient)
		patientName = result.Patient.Name
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, document, patient_name, patient, status, error, total_trials, eligible_trials)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, createdAt.Format(time.RFC3339Nano), result.DocumentPath, patientName,
		string(patientJSON), string(result.Status), result.Error,
		len(result.Verdicts), result.EligibleCount(),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	trialStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO trial_verdicts (run_id, position, trial_id, title, overall_eligible, summary)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing trial insert: %w", err)
	}
	defer trialStmt.Close()

	criterionStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO criterion_verdicts (run_id, trial_id, position, criterion, type, eligible, explanation, confidence, evaluated_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing criterion insert: %w", err)
	}
	defer criterionStmt.Close()

	for i, verdict := range result.Verdicts {
		if _, err := trialStmt.ExecContext(ctx,
			runID, i, verdict.TrialID, verdict.Title, verdict.OverallEligible, verdict.Summary,
		); err != nil {
			return "", fmt.Errorf("inserting verdict for %s: %w", verdict.TrialID, err)
		}

		for j, cv := range verdict.CriteriaVerdicts {
			if _, err := criterionStmt.ExecContext(ctx,
				runID, verdict.TrialID, j, cv.Criterion.Text, string(cv.Criterion.Type),
				cv.Eligible, cv.Explanation, string(cv.Confidence), string(cv.EvaluatedBy),
			); err != nil {
				return "", fmt.Errorf("inserting criterion verdict for %s: %w", verdict.TrialID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trialmatch/internal/eligibility"
	"github.com/pdiddy/trialmatch/internal/history"
	"github.com/pdiddy/trialmatch/internal/patient"
	"github.com/pdiddy/trialmatch/internal/report"
	"github.com/pdiddy/trialmatch/internal/telemetry"
	"github.com/pdiddy/trialmatch/internal/trials"
	"github.com/pdiddy/trialmatch/internal/workflow"
	"github.com/pdiddy/trialmatch/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "trialmatch/0.1"
	defaultModel     = "gemini-1.5-flash-latest"
)

var matchCmd = &cobra.Command{
	Use:   "match [document]",
	Short: "Run the full patient-to-trial matching pipeline",
	Long: `Match extracts a patient record from a medical document, searches
ClinicalTrials.gov for recruiting trials matching the patient's
conditions, evaluates every eligibility criterion, and prints a
per-trial verdict. The run is recorded in the local history database
and rendered as a Markdown report.

With --sample the trial search is replaced by a built-in trial set so
the pipeline runs without network access.`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().String("model", "", "Gemini model identifier (default "+defaultModel+")")
	matchCmd.Flags().String("api-key", "", "Gemini API key (default: gemini-api-key secret)")
	matchCmd.Flags().String("extractor", "", "document extraction backend: plaintext, documentai, or markitdown")
	matchCmd.Flags().Int("max-trials", 10, "maximum number of trials to fetch")
	matchCmd.Flags().String("status", "", "trial recruitment status filter (default RECRUITING)")
	matchCmd.Flags().String("condition", "", "fallback search condition when the record has none (default diabetes)")
	matchCmd.Flags().Int("max-concurrent", 4, "criteria evaluated in parallel per trial")
	matchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	matchCmd.Flags().Bool("sample", false, "use built-in sample trials instead of ClinicalTrials.gov")
	matchCmd.Flags().Bool("no-history", false, "do not record the run in the history database")
	matchCmd.Flags().Bool("no-report", false, "do not write a Markdown report")
	matchCmd.Flags().String("history-dir", "history", "base directory for the history database")
	matchCmd.Flags().String("output-dir", "output/reports", "directory for generated reports")
	matchCmd.Flags().String("telemetry-dir", "", "write per-run telemetry JSONL under this directory")
	matchCmd.Flags().String("session", "", "telemetry session ID (default: derived from timestamp)")

	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	documentPath := args[0]

	extractor, err := extractorFromFlags(cmd)
	if err != nil {
		return err
	}

	searchCfg := searchConfigFromFlags(cmd)

	var searcher workflow.Searcher
	if sample, _ := cmd.Flags().GetBool("sample"); sample {
		searcher = sampleSearcher{}
	} else {
		searcher = &trials.Client{HTTP: &http.Client{Timeout: searchCfg.Timeout}}
	}

	sink, closeSink, err := sinkFromFlags(cmd)
	if err != nil {
		return err
	}
	defer closeSink()

	coordinator := workflow.New(extractor, searcher, aggregatorFromFlags(cmd), sink, searchCfg)
	result := coordinator.Run(cmd.Context(), documentPath)

	printResult(os.Stdout, &result)

	if noHistory, _ := cmd.Flags().GetBool("no-history"); !noHistory {
		if err := saveRun(cmd, &result); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not save run to history: %v\n", err)
		}
	}

	if noReport, _ := cmd.Flags().GetBool("no-report"); !noReport && result.Status == types.WorkflowCompleted {
		outputDir, _ := cmd.Flags().GetString("output-dir")
		path, err := report.Write(&result, types.ReportConfig{OutputDir: outputDir})
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not write report: %v\n", err)
		} else {
			fmt.Fprintf(os.Stdout, "Report written to %s\n", path)
		}
	}

	if result.Status == types.WorkflowFailed {
		return fmt.Errorf("match failed: %s", result.Error)
	}
	return nil
}

func saveRun(cmd *cobra.Command, result *types.WorkflowResult) error {
	historyDir, _ := cmd.Flags().GetString("history-dir")
	store, err := history.NewStore(types.HistoryConfig{HistoryDir: historyDir})
	if err != nil {
		return err
	}
	defer store.Close()

	runID, err := store.Save(context.Background(), result)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Recorded run %s\n", runID)
	return nil
}

// sampleSearcher serves the built-in trial set for offline runs.
type sampleSearcher struct{}

func (sampleSearcher) Search(context.Context, string, types.SearchConfig) ([]types.Trial, error) {
	return trials.SampleTrials(), nil
}

func printResult(w io.Writer, result *types.WorkflowResult) {
	if result.Patient != nil {
		age := "unknown age"
		if v, ok := result.Patient.AgeYears(); ok {
			age = fmt.Sprintf("age %d", v)
		}
		fmt.Fprintf(w, "Patient: %s (%s)\n", result.Patient.Name, age)
	}

	if result.Status == types.WorkflowFailed {
		fmt.Fprintf(w, "Match failed: %s\n", result.Error)
		return
	}

	fmt.Fprintf(w, "Analyzed %d trial(s)\n\n", len(result.Verdicts))
	for _, v := range result.Verdicts {
		fmt.Fprintf(w, "%-13s %-50s %s\n", v.TrialID, truncate(v.Title, 50), v.Summary)
	}
	fmt.Fprintf(w, "\n%d of %d trials eligible\n", result.EligibleCount(), len(result.Verdicts))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// --- shared flag helpers ---

func searchConfigFromFlags(cmd *cobra.Command) types.SearchConfig {
	maxTrials, _ := cmd.Flags().GetInt("max-trials")
	status, _ := cmd.Flags().GetString("status")
	condition, _ := cmd.Flags().GetString("condition")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		MaxStudies:       maxTrials,
		Status:           status,
		DefaultCondition: condition,
	}
}

func extractorFromFlags(cmd *cobra.Command) (patient.Extractor, error) {
	backend, _ := cmd.Flags().GetString("extractor")

	cfg := types.ExtractionConfig{
		Backend:     types.ExtractorBackend(backend),
		Project:     secretDefault("docai-project", ""),
		Location:    secretDefault("docai-location", ""),
		Processor:   secretDefault("docai-processor", ""),
		AccessToken: secretDefault("docai-access-token", ""),
	}
	if cfg.Location == "" {
		cfg.Location = "us"
	}
	return patient.NewExtractor(cfg)
}

func aggregatorFromFlags(cmd *cobra.Command) *eligibility.Aggregator {
	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = defaultModel
	}
	flagKey, _ := cmd.Flags().GetString("api-key")
	apiKey := secretDefault("gemini-api-key", flagKey)
	maxConcurrent, _ := cmd.Flags().GetInt("max-concurrent")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}

	var backend eligibility.Backend
	if apiKey != "" {
		backend = &eligibility.GeminiBackend{
			APIKey:     apiKey,
			Model:      model,
			Client:     &http.Client{Timeout: timeout},
			MaxRetries: 3,
		}
	} else {
		fmt.Fprintln(os.Stderr, "No Gemini API key configured; evaluating all criteria with rule-based fallback")
	}

	evaluator := eligibility.NewEvaluator(backend, types.EligibilityConfig{
		AIConfig:      types.AIConfig{Model: model, MaxRetries: 3},
		MaxConcurrent: maxConcurrent,
	})
	return eligibility.NewAggregator(evaluator, maxConcurrent)
}

func sinkFromFlags(cmd *cobra.Command) (telemetry.Sink, func(), error) {
	telemetryDir, _ := cmd.Flags().GetString("telemetry-dir")
	if telemetryDir == "" {
		return telemetry.Nop{}, func() {}, nil
	}

	sessionID, _ := cmd.Flags().GetString("session")
	session, err := telemetry.NewSession(telemetryDir, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("opening telemetry session: %w", err)
	}
	return session, func() { session.Close() }, nil
}

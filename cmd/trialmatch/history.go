// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trialmatch/internal/history"
	"github.com/pdiddy/trialmatch/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past match runs (list, show, search, export)",
	Long: `History manages the local SQLite database of past match runs. Use
subcommands to list recent runs, show one run in full, search stored
criterion verdicts with full-text queries, or export a run.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent match runs, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-20s  %-9s  %s\n",
		"Run", "When", "Patient", "Status", "Eligible")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-20s  %-9s  %d/%d\n",
			r.RunID, r.CreatedAt.Format("2006-01-02 15:04:05"),
			truncate(r.PatientName, 20), r.Status, r.EligibleTrials, r.TotalTrials)
	}
	return nil
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show one match run with all verdicts",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Show(context.Background(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}

	fmt.Printf("Run %s (%s)\n", run.RunID, run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Document: %s\n", run.Document)
	fmt.Printf("Status:   %s\n", run.Status)
	if run.Error != "" {
		fmt.Printf("Error:    %s\n", run.Error)
	}
	if run.Patient != nil {
		fmt.Printf("Patient:  %s\n", run.Patient.Name)
	}
	fmt.Println()
	for _, v := range run.Verdicts {
		fmt.Printf("%-13s %-50s %s\n", v.TrialID, truncate(v.Title, 50), v.Summary)
	}
	return nil
}

// --- search subcommand ---

var historySearchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Full-text search stored criterion verdicts",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHistorySearch,
}

func runHistorySearch(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	hits, err := store.Search(context.Background(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Println("No matching verdicts.")
		return nil
	}
	for _, h := range hits {
		met := "not met"
		if h.Eligible {
			met = "met"
		}
		fmt.Printf("%s  %-13s %-7s %s\n", h.RunID, h.TrialID, met, truncate(h.Criterion, 60))
	}
	fmt.Printf("\n%d matching verdicts\n", len(hits))
	return nil
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export [run-id]",
	Short: "Export one run to YAML or JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(context.Background(), args[0])
	case "json":
		path, err = store.ExportJSON(context.Background(), args[0])
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Exported to %s\n", path)
	return nil
}

// --- shared helpers ---

func openHistory(cmd *cobra.Command) (*history.Store, error) {
	historyDir, _ := cmd.Flags().GetString("history-dir")
	if historyDir == "" {
		historyDir = "history"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return history.NewStore(types.HistoryConfig{
		HistoryDir: historyDir,
		MaxResults: maxResults,
	})
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	historyCmd.PersistentFlags().String("history-dir", "history", "base directory for the history database")
	historyCmd.PersistentFlags().Int("max-results", 20, "maximum number of results")
	historyCmd.PersistentFlags().Bool("json", false, "output as JSON")

	// Export flags.
	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	// Wire subcommands.
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trialmatch/internal/trials"
	"github.com/pdiddy/trialmatch/pkg/types"
)

var trialsCmd = &cobra.Command{
	Use:   "trials",
	Short: "Search and inspect clinical trials",
	Long: `Trials queries the ClinicalTrials.gov v2 API directly, without running
the rest of the pipeline. Use search to find recruiting trials by
condition, or fetch to retrieve one trial with its parsed criteria.`,
}

var trialsSearchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search ClinicalTrials.gov for recruiting trials",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTrialsSearch,
}

var trialsFetchCmd = &cobra.Command{
	Use:   "fetch [nct-id]",
	Short: "Fetch one trial by NCT identifier",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrialsFetch,
}

func init() {
	trialsCmd.PersistentFlags().Int("max-trials", 10, "maximum number of trials to fetch")
	trialsCmd.PersistentFlags().String("status", "", "recruitment status filter (default RECRUITING)")
	trialsCmd.PersistentFlags().String("condition", "", "fallback search condition")
	trialsCmd.PersistentFlags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	trialsCmd.PersistentFlags().Bool("json", false, "output trials as JSON")

	trialsCmd.AddCommand(trialsSearchCmd)
	trialsCmd.AddCommand(trialsFetchCmd)
	rootCmd.AddCommand(trialsCmd)
}

func runTrialsSearch(cmd *cobra.Command, args []string) error {
	cfg := searchConfigFromFlags(cmd)
	client := &trials.Client{HTTP: &http.Client{Timeout: cfg.Timeout}}

	found, err := client.Search(cmd.Context(), strings.Join(args, " "), cfg)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(found)
	}

	if len(found) == 0 {
		fmt.Println("No trials found.")
		return nil
	}
	for _, t := range found {
		fmt.Printf("%-13s %-60s %d criteria\n", t.TrialID, truncate(t.Title, 60), len(t.Criteria))
	}
	fmt.Printf("\n%d trials\n", len(found))
	return nil
}

func runTrialsFetch(cmd *cobra.Command, args []string) error {
	cfg := searchConfigFromFlags(cmd)
	client := &trials.Client{HTTP: &http.Client{Timeout: cfg.Timeout}}

	trial, err := client.Fetch(cmd.Context(), args[0], cfg)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(trial)
	}

	fmt.Printf("%s: %s\n", trial.TrialID, trial.Title)
	if len(trial.Conditions) > 0 {
		fmt.Printf("Conditions: %s\n", strings.Join(trial.Conditions, ", "))
	}
	printCriteria(trial.Criteria)
	return nil
}

func printCriteria(criteria []types.Criterion) {
	if len(criteria) == 0 {
		fmt.Println("No parsed criteria.")
		return
	}
	fmt.Println("Criteria:")
	for _, c := range criteria {
		fmt.Printf("  [%s] %s\n", c.Type, c.Text)
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trialmatch/internal/patient"
	"github.com/pdiddy/trialmatch/internal/trials"
	"github.com/pdiddy/trialmatch/pkg/types"
)

var eligibilityCmd = &cobra.Command{
	Use:   "eligibility [document] [nct-id]",
	Short: "Evaluate one patient against one trial's criteria",
	Long: `Eligibility extracts the patient record from a document, fetches the
named trial, and evaluates every criterion, printing the per-criterion
verdicts and the trial-level decision. With --sample the built-in
sample trials are analyzed instead of a fetched one; omitting the
document as well evaluates the built-in sample patient.`,
	Args: cobra.RangeArgs(0, 2),
	RunE: runEligibility,
}

func init() {
	eligibilityCmd.Flags().String("model", "", "Gemini model identifier (default "+defaultModel+")")
	eligibilityCmd.Flags().String("api-key", "", "Gemini API key (default: gemini-api-key secret)")
	eligibilityCmd.Flags().String("extractor", "", "document extraction backend: plaintext, documentai, or markitdown")
	eligibilityCmd.Flags().Int("max-concurrent", 4, "criteria evaluated in parallel per trial")
	eligibilityCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	eligibilityCmd.Flags().Bool("sample", false, "analyze the built-in sample trials")
	eligibilityCmd.Flags().Bool("json", false, "output verdicts as JSON")

	rootCmd.AddCommand(eligibilityCmd)
}

func runEligibility(cmd *cobra.Command, args []string) error {
	sample, _ := cmd.Flags().GetBool("sample")

	var record *types.PatientRecord
	if len(args) > 0 {
		extractor, err := extractorFromFlags(cmd)
		if err != nil {
			return err
		}
		record, err = patient.ExtractRecord(cmd.Context(), extractor, args[0])
		if err != nil {
			return err
		}
	} else if sample {
		record = patient.SampleRecord()
	} else {
		return fmt.Errorf("provide a patient document, or use --sample")
	}

	var trialList []types.Trial
	if sample {
		trialList = trials.SampleTrials()
	} else {
		if len(args) < 2 {
			return fmt.Errorf("provide an NCT identifier, or use --sample")
		}
		cfg := searchConfigFromFlags(cmd)
		client := &trials.Client{HTTP: &http.Client{Timeout: cfg.Timeout}}
		trial, err := client.Fetch(cmd.Context(), args[1], cfg)
		if err != nil {
			return err
		}
		trialList = []types.Trial{trial}
	}

	verdicts := aggregatorFromFlags(cmd).AnalyzeAll(cmd.Context(), record, trialList)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(verdicts)
	}

	for _, v := range verdicts {
		fmt.Printf("%s: %s\n%s\n", v.TrialID, v.Title, v.Summary)
		for _, cv := range v.CriteriaVerdicts {
			met := "not met"
			if cv.Eligible {
				met = "met"
			}
			fmt.Printf("  [%s] %-7s (%s, %s) %s\n", cv.Criterion.Type, met, cv.Confidence, cv.EvaluatedBy, cv.Criterion.Text)
			fmt.Printf("          %s\n", cv.Explanation)
		}
		fmt.Println()
	}
	return nil
}

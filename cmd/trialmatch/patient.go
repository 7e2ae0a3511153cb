package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trialmatch/internal/patient"
)

var patientCmd = &cobra.Command{
	Use:   "patient [document]",
	Short: "Extract a structured patient record from a medical document",
	Long: `Patient runs only the document extraction stage: it reads the document
with the selected extraction backend, parses name, age, allergies,
conditions, and lab values, and prints the structured record.`,
	Args: cobra.ExactArgs(1),
	RunE: runPatient,
}

func init() {
	patientCmd.Flags().String("extractor", "", "document extraction backend: plaintext, documentai, or markitdown")
	patientCmd.Flags().Bool("json", false, "output the record as JSON")

	rootCmd.AddCommand(patientCmd)
}

func runPatient(cmd *cobra.Command, args []string) error {
	extractor, err := extractorFromFlags(cmd)
	if err != nil {
		return err
	}

	record, err := patient.ExtractRecord(cmd.Context(), extractor, args[0])
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}

	fmt.Printf("Name:       %s\n", record.Name)
	if age, ok := record.AgeYears(); ok {
		fmt.Printf("Age:        %d\n", age)
	} else {
		fmt.Println("Age:        unknown")
	}
	fmt.Printf("Allergies:  %s\n", orNone(record.Allergies))
	fmt.Printf("Conditions: %s\n", orNone(record.Conditions))
	if len(record.LabResults) > 0 {
		fmt.Println("Labs:")
		for name, value := range record.LabResults {
			fmt.Printf("  %s: %g\n", name, value)
		}
	}
	return nil
}

func orNone(values []string) string {
	if len(values) == 0 {
		return "none recorded"
	}
	return strings.Join(values, ", ")
}

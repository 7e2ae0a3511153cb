//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// sampleNote is a patient document used by the Demo target.
const sampleNote = `Patient Name: John Doe
Age: 55
Allergies: Penicillin
Diagnosis: Type 2 Diabetes, Hypertension
WBC: 5.2
Hemoglobin: 13.5
Glucose: 142.0
`

// Demo builds the binary and runs the full pipeline offline against a
// generated sample patient note and the built-in sample trials.
func Demo() error {
	mg.SerialDeps(Init, Build)

	notePath := filepath.Join("patients", "sample-note.txt")
	if _, err := os.Stat(notePath); os.IsNotExist(err) {
		if err := os.WriteFile(notePath, []byte(sampleNote), 0o644); err != nil {
			return fmt.Errorf("writing sample note: %w", err)
		}
		fmt.Println("Wrote", notePath)
	}

	cmd := exec.Command(filepath.Join(binDir, binName), "match", "--sample", notePath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

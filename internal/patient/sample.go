// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package patient

import "github.com/pdiddy/trialmatch/pkg/types"

// SampleRecord returns a fixed patient record. The CLI's --sample mode and
// tests use it instead of extracting a real document.
func SampleRecord() *types.PatientRecord {
	age := 55
	return &types.PatientRecord{
		Name:       "John Doe",
		Age:        &age,
		Allergies:  []string{"Penicillin"},
		Conditions: []string{"Diabetes"},
		LabResults: map[string]float64{"WBC": 5.2, "Hemoglobin": 13.5},
		Summary:    "Patient with diabetes, age 55, no major allergies except penicillin.",
	}
}

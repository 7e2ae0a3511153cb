// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the trialmatch pipeline:
// patient records, trials, eligibility criteria, verdicts, and per-stage
// configuration.
package types

// PatientRecord holds the structured patient data extracted from a medical
// document. It is produced once per document and is immutable for the rest
// of a workflow run.
type PatientRecord struct {
	// Name is the patient name as found in the document, or "Unknown".
	Name string `json:"name" yaml:"name"`

	// Age is the patient age in years. Nil when no age was found.
	Age *int `json:"age,omitempty" yaml:"age,omitempty"`

	// Allergies lists known allergies in document order.
	Allergies []string `json:"allergies" yaml:"allergies"`

	// Conditions lists existing diagnoses and conditions in document order.
	Conditions []string `json:"existing_conditions" yaml:"existing_conditions"`

	// LabResults maps lab test names (e.g. "Hemoglobin") to values.
	LabResults map[string]float64 `json:"lab_results" yaml:"lab_results"`

	// Summary is a short free-text summary, truncated from the source text.
	Summary string `json:"summary" yaml:"summary"`

	// RawText is the full text extracted from the source document.
	RawText string `json:"raw_text,omitempty" yaml:"raw_text,omitempty"`
}

// AgeYears returns the patient age and whether it is known.
func (p *PatientRecord) AgeYears() (int, bool) {
	if p.Age == nil {
		return 0, false
	}
	return *p.Age, true
}

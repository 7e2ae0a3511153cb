// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trials finds candidate clinical trials for a patient. It builds a
// condition search query from the patient record, queries the
// ClinicalTrials.gov v2 API, and returns trial records with parsed
// eligibility criteria.
package trials

import (
	"strings"

	"github.com/pdiddy/trialmatch/pkg/types"
)

// defaultCondition is the search term used when the patient record yields
// no searchable terms at all.
const defaultCondition = "diabetes"

// BuildQuery derives the trial search query from patient attributes:
// trimmed condition names joined with " OR ", plus an age-group term
// ("elderly" from 65, "adult" from 18). A patient with no conditions and
// no age falls back to the configured default condition.
func BuildQuery(patient *types.PatientRecord, fallback string) string {
	var terms []string

	for _, condition := range patient.Conditions {
		if c := strings.TrimSpace(condition); c != "" {
			terms = append(terms, c)
		}
	}

	if age, ok := patient.AgeYears(); ok {
		switch {
		case age >= 65:
			terms = append(terms, "elderly")
		case age >= 18:
			terms = append(terms, "adult")
		}
	}

	if len(terms) == 0 {
		if fallback == "" {
			fallback = defaultCondition
		}
		return fallback
	}
	return strings.Join(terms, " OR ")
}

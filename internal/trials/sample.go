// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trials

import "github.com/pdiddy/trialmatch/pkg/types"

// SampleTrials returns a fixed pair of trial records. The CLI's --sample
// mode and tests use these instead of calling the live API.
func SampleTrials() []types.Trial {
	return []types.Trial{
		{
			TrialID:    "NCT01234567",
			Title:      "A Study of Diabetes Treatment",
			Conditions: []string{"Diabetes Mellitus", "Type 2 Diabetes"},
			Criteria: []types.Criterion{
				{Text: "Age >= 18", Type: types.Inclusion},
				{Text: "Diagnosis of Type 2 Diabetes", Type: types.Inclusion},
				{Text: "No penicillin allergy", Type: types.Inclusion},
				{Text: "No history of cancer", Type: types.Exclusion},
			},
			Description: "This study evaluates a new treatment for diabetes.",
			Status:      "RECRUITING",
		},
		{
			TrialID:    "NCT07654321",
			Title:      "New Insulin Regimen for Adults",
			Conditions: []string{"Diabetes Mellitus"},
			Criteria: []types.Criterion{
				{Text: "Diabetes diagnosis", Type: types.Inclusion},
				{Text: "Age 40-65", Type: types.Inclusion},
				{Text: "No severe kidney disease", Type: types.Exclusion},
			},
			Description: "Testing a new insulin delivery method.",
			Status:      "RECRUITING",
		},
	}
}

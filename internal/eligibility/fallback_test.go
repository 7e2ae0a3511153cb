// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eligibility

import (
	"testing"

	"github.com/pdiddy/trialmatch/pkg/types"
)

func TestFallbackAgeMinimum(t *testing.T) {
	tests := []struct {
		name string
		age  int
		text string
		want bool
	}{
		{"above minimum", 55, "Age >= 18", true},
		{"exactly minimum", 18, "Age >= 18", true},
		{"below minimum", 16, "Age >= 18", false},
		{"in range", 50, "Age 40-65", true},
		{"below range", 30, "Age 40-65", false},
		{"above range", 70, "Age 40-65", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patient := &types.PatientRecord{Age: intPtr(tt.age)}
			v := fallbackVerdict(patient, types.Criterion{Text: tt.text, Type: types.Inclusion})

			if v.Eligible != tt.want {
				t.Errorf("age %d vs %q: Eligible = %v, want %v", tt.age, tt.text, v.Eligible, tt.want)
			}
			if v.EvaluatedBy != types.ByFallback {
				t.Errorf("EvaluatedBy = %q, want fallback", v.EvaluatedBy)
			}
			if v.Confidence != types.ConfidenceMedium {
				t.Errorf("Confidence = %q, want MEDIUM", v.Confidence)
			}
		})
	}
}

func TestFallbackAgeUnknownPasses(t *testing.T) {
	patient := &types.PatientRecord{}
	v := fallbackVerdict(patient, types.Criterion{Text: "Age >= 18", Type: types.Inclusion})

	if !v.Eligible {
		t.Error("criterion without a known patient age should pass by default")
	}
}

func TestFallbackPenicillinAllergy(t *testing.T) {
	criterion := types.Criterion{Text: "No penicillin allergy", Type: types.Inclusion}

	allergic := &types.PatientRecord{Allergies: []string{"Penicillin"}}
	if v := fallbackVerdict(allergic, criterion); v.Eligible {
		t.Error("allergic patient should not be eligible")
	}

	clear := &types.PatientRecord{Allergies: []string{"Sulfa"}}
	if v := fallbackVerdict(clear, criterion); !v.Eligible {
		t.Error("patient without penicillin allergy should be eligible")
	}
}

func TestFallbackConditions(t *testing.T) {
	tests := []struct {
		name      string
		criterion types.Criterion
		patient   *types.PatientRecord
		want      bool
	}{
		{
			name:      "diabetes required and present",
			criterion: types.Criterion{Text: "Diagnosis of Type 2 Diabetes", Type: types.Inclusion},
			patient:   &types.PatientRecord{Conditions: []string{"Type 2 Diabetes"}},
			want:      true,
		},
		{
			name:      "diabetes required and absent",
			criterion: types.Criterion{Text: "Diabetes diagnosis", Type: types.Inclusion},
			patient:   &types.PatientRecord{Conditions: []string{"Hypertension"}},
			want:      false,
		},
		{
			name:      "cancer exclusion with no cancer history",
			criterion: types.Criterion{Text: "History of cancer", Type: types.Exclusion},
			patient:   &types.PatientRecord{Conditions: []string{"Diabetes"}},
			want:      true,
		},
		{
			name:      "cancer exclusion with cancer history",
			criterion: types.Criterion{Text: "History of cancer", Type: types.Exclusion},
			patient:   &types.PatientRecord{Conditions: []string{"Breast Cancer"}},
			want:      false,
		},
		{
			name:      "kidney disease exclusion without kidney condition",
			criterion: types.Criterion{Text: "Severe kidney disease", Type: types.Exclusion},
			patient:   &types.PatientRecord{Conditions: []string{"Diabetes"}},
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := fallbackVerdict(tt.patient, tt.criterion)
			if v.Eligible != tt.want {
				t.Errorf("Eligible = %v, want %v", v.Eligible, tt.want)
			}
		})
	}
}

func TestFallbackUnknownCriterionPasses(t *testing.T) {
	patient := testPatient()
	v := fallbackVerdict(patient, types.Criterion{Text: "Able to provide informed consent", Type: types.Inclusion})

	if !v.Eligible {
		t.Error("unmatched criteria are assumed satisfied")
	}
	if v.Explanation != "Analyzed using rule-based fallback" {
		t.Errorf("Explanation = %q", v.Explanation)
	}
}

// Identical inputs must always produce identical verdicts.
func TestFallbackDeterministic(t *testing.T) {
	patient := testPatient()
	criterion := types.Criterion{Text: "Age 40-65", Type: types.Inclusion}

	first := fallbackVerdict(patient, criterion)
	for i := 0; i < 10; i++ {
		if got := fallbackVerdict(patient, criterion); got != first {
			t.Fatalf("verdict changed between runs: %+v vs %+v", got, first)
		}
	}
}

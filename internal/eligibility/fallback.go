// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eligibility

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/trialmatch/pkg/types"
)

// ageRangePattern matches an explicit age range like "40-65".
var ageRangePattern = regexp.MustCompile(`(\d+)\s*-\s*(\d+)`)

// minAgePattern matches the number following a ">=" comparison.
var minAgePattern = regexp.MustCompile(`>=\s*(\d+)`)

// fallbackVerdict is the deterministic rule-based strategy. It inspects the
// criterion text case-insensitively for domain keywords in priority order:
// age comparisons, allergy exclusions, then condition keywords. A criterion
// matching no rule is assumed satisfied, so unknown criteria never block a
// trial on their own. Fallback verdicts always carry MEDIUM confidence.
func fallbackVerdict(patient *types.PatientRecord, criterion types.Criterion) types.CriterionVerdict {
	eligible := true
	explanation := "Analyzed using rule-based fallback"

	text := strings.ToLower(criterion.Text)

	switch {
	case strings.Contains(text, "age") && patient.Age != nil:
		eligible, explanation = evaluateAge(*patient.Age, text, eligible, explanation)

	case strings.Contains(text, "allergy") && len(patient.Allergies) > 0:
		if strings.Contains(text, "penicillin") {
			eligible = !containsFold(patient.Allergies, "penicillin")
			explanation = fmt.Sprintf("Patient allergies: %s", strings.Join(patient.Allergies, ", "))
		}

	case containsAny(text, "diabetes", "cancer", "kidney"):
		eligible, explanation = evaluateConditions(patient, criterion, text, eligible, explanation)
	}

	return types.CriterionVerdict{
		Criterion:   criterion,
		Eligible:    eligible,
		Explanation: explanation,
		Confidence:  types.ConfidenceMedium,
		EvaluatedBy: types.ByFallback,
	}
}

// evaluateAge checks ">= N" minimums and "N-M" ranges against the patient age.
func evaluateAge(age int, text string, eligible bool, explanation string) (bool, string) {
	if m := minAgePattern.FindStringSubmatch(text); m != nil {
		minAge, err := strconv.Atoi(m[1])
		if err == nil {
			return age >= minAge, fmt.Sprintf("Patient age (%d) vs minimum age (%d)", age, minAge)
		}
	}

	if m := ageRangePattern.FindStringSubmatch(text); m != nil {
		lo, errLo := strconv.Atoi(m[1])
		hi, errHi := strconv.Atoi(m[2])
		if errLo == nil && errHi == nil {
			return lo <= age && age <= hi, fmt.Sprintf("Patient age (%d) vs required range (%d-%d)", age, lo, hi)
		}
	}

	return eligible, explanation
}

// evaluateConditions matches condition keywords against the patient's
// existing conditions. Cancer is special-cased for exclusion criteria: the
// exclusion applies only when a cancer history is present.
func evaluateConditions(patient *types.PatientRecord, criterion types.Criterion, text string, eligible bool, explanation string) (bool, string) {
	conditionList := strings.Join(patient.Conditions, ", ")

	switch {
	case strings.Contains(text, "diabetes"):
		return anyConditionContains(patient.Conditions, "diabetes"),
			fmt.Sprintf("Patient conditions: %s", conditionList)

	case strings.Contains(text, "cancer") && criterion.Type == types.Exclusion:
		return !anyConditionContains(patient.Conditions, "cancer"),
			"No cancer history found in patient conditions"

	case strings.Contains(text, "kidney"):
		return anyConditionContains(patient.Conditions, "kidney"),
			fmt.Sprintf("Patient conditions: %s", conditionList)
	}

	return eligible, explanation
}

// anyConditionContains reports whether any condition contains the keyword,
// case-insensitively.
func anyConditionContains(conditions []string, keyword string) bool {
	for _, c := range conditions {
		if strings.Contains(strings.ToLower(c), keyword) {
			return true
		}
	}
	return false
}

// containsFold reports whether the list contains the value, ignoring case.
func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}

// containsAny reports whether text contains at least one of the keywords.
func containsAny(text string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

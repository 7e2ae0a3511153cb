// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package criteria parses free-text trial eligibility descriptions into
// structured inclusion and exclusion criteria.
package criteria

import (
	"fmt"
	"strings"

	"github.com/pdiddy/trialmatch/pkg/types"
)

const (
	inclusionHeader = "Inclusion Criteria:"
	exclusionHeader = "Exclusion Criteria:"
)

// minItemLength filters out stray fragments: a line only counts as a
// criterion when its stripped length exceeds this.
const minItemLength = 10

// Parse splits raw eligibility text into ordered criteria. Text before the
// first "Exclusion Criteria:" header (minus an optional "Inclusion
// Criteria:" header) is the inclusion block; text after it is the exclusion
// block. Source order is preserved, inclusion first. Empty or missing text
// yields an empty slice, not an error.
func Parse(eligibilityText string) []types.Criterion {
	if strings.TrimSpace(eligibilityText) == "" {
		return nil
	}

	inclusionText, exclusionText, _ := strings.Cut(eligibilityText, exclusionHeader)
	inclusionText = strings.TrimSpace(strings.Replace(inclusionText, inclusionHeader, "", 1))
	exclusionText = strings.TrimSpace(exclusionText)

	var criteria []types.Criterion
	criteria = append(criteria, parseItems(inclusionText, types.Inclusion)...)
	criteria = append(criteria, parseItems(exclusionText, types.Exclusion)...)
	return criteria
}

// parseItems extracts individual criterion lines from one block of text.
func parseItems(text string, ctype types.CriterionType) []types.Criterion {
	var items []types.Criterion

	for _, line := range strings.Split(text, "\n") {
		item := stripMarkers(line)
		if len(item) <= minItemLength {
			continue
		}
		items = append(items, types.Criterion{Text: item, Type: ctype})
	}

	return items
}

// stripMarkers removes leading bullet and numbering characters from a line.
func stripMarkers(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimSpace(strings.TrimLeft(line, "•-*"))
	line = strings.TrimSpace(strings.TrimLeft(line, "0123456789."))
	return line
}

// Synthesize builds the criteria implied by a trial's structured
// eligibility metadata: minimum and maximum age bounds and a gender
// restriction when the trial is not open to all. All synthesized criteria
// are inclusion criteria and follow the free-text criteria in order.
func Synthesize(minAge, maxAge, gender string) []types.Criterion {
	var criteria []types.Criterion

	if minAge != "" {
		criteria = append(criteria, types.Criterion{
			Text: fmt.Sprintf("Minimum age: %s", minAge),
			Type: types.Inclusion,
		})
	}
	if maxAge != "" {
		criteria = append(criteria, types.Criterion{
			Text: fmt.Sprintf("Maximum age: %s", maxAge),
			Type: types.Inclusion,
		})
	}
	if gender != "" && !strings.EqualFold(gender, "ALL") {
		criteria = append(criteria, types.Criterion{
			Text: fmt.Sprintf("Gender: %s", gender),
			Type: types.Inclusion,
		})
	}

	return criteria
}

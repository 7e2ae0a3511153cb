// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package patient turns medical documents into structured patient records.
// A pluggable Extractor obtains the raw text (plain files, Google Document
// AI, or a local markitdown container); ParseRecord then lifts the
// demographic and clinical fields out of the text.
package patient

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/trialmatch/pkg/types"
)

// summaryLimit caps the free-text summary carried on the record.
const summaryLimit = 500

// namePatterns locate the patient name, most specific first.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Patient Name:[ \t]*([A-Za-z][A-Za-z '.-]*)`),
	regexp.MustCompile(`(?i)Name:[ \t]*([A-Za-z][A-Za-z '.-]*)`),
	regexp.MustCompile(`(?i)Patient:[ \t]*([A-Za-z][A-Za-z '.-]*)`),
}

// agePatterns locate the patient age in years.
var agePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Age:[ \t]*(\d+)`),
	regexp.MustCompile(`(?i)(\d+)[ \t]*years?[ \t]*old`),
	regexp.MustCompile(`(?i)(\d+)[ \t]*yo\b`),
}

// allergyPatterns locate the allergy list.
var allergyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Allergies?:[ \t]*([^.\n]+)`),
	regexp.MustCompile(`(?i)Allergic to:[ \t]*([^.\n]+)`),
	regexp.MustCompile(`(?i)Drug allergies?:[ \t]*([^.\n]+)`),
}

// conditionPatterns locate the diagnosis / condition list.
var conditionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Diagnosis:[ \t]*([^.\n]+)`),
	regexp.MustCompile(`(?i)Medical History:[ \t]*([^.\n]+)`),
	regexp.MustCompile(`(?i)Conditions?:[ \t]*([^.\n]+)`),
	regexp.MustCompile(`(?i)PMH:[ \t]*([^.\n]+)`),
}

// labPatterns map lab result patterns to canonical lab names.
var labPatterns = []struct {
	re   *regexp.Regexp
	name string
}{
	{regexp.MustCompile(`(?i)WBC:[ \t]*(\d+\.?\d*)`), "WBC"},
	{regexp.MustCompile(`(?i)Hemoglobin:[ \t]*(\d+\.?\d*)`), "Hemoglobin"},
	{regexp.MustCompile(`(?i)Hgb:[ \t]*(\d+\.?\d*)`), "Hemoglobin"},
	{regexp.MustCompile(`(?i)Glucose:[ \t]*(\d+\.?\d*)`), "Glucose"},
	{regexp.MustCompile(`(?i)Creatinine:[ \t]*(\d+\.?\d*)`), "Creatinine"},
}

// ParseRecord extracts a structured PatientRecord from raw document text.
// Fields that cannot be found keep zero values ("Unknown" name, nil age,
// empty lists); parsing never fails.
func ParseRecord(text string) *types.PatientRecord {
	record := &types.PatientRecord{
		Name:       "Unknown",
		LabResults: map[string]float64{},
		Summary:    truncateSummary(text),
		RawText:    text,
	}

	if m := firstMatch(namePatterns, text); m != "" {
		record.Name = m
	}

	if m := firstMatch(agePatterns, text); m != "" {
		if age, err := strconv.Atoi(m); err == nil {
			record.Age = &age
		}
	}

	if m := firstMatch(allergyPatterns, text); m != "" {
		lower := strings.ToLower(m)
		// "None" and "NKDA" (no known drug allergies) mean an empty list.
		if !strings.Contains(lower, "none") && !strings.Contains(lower, "nkda") {
			record.Allergies = splitList(m)
		}
	}

	if m := firstMatch(conditionPatterns, text); m != "" {
		record.Conditions = splitList(m)
	}

	for _, lab := range labPatterns {
		m := lab.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if _, seen := record.LabResults[lab.name]; seen {
			continue
		}
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			record.LabResults[lab.name] = v
		}
	}

	return record
}

// firstMatch returns the trimmed first capture group of the first pattern
// that matches, or "".
func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// splitList splits a comma-separated field into trimmed entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// truncateSummary caps the text at summaryLimit characters.
func truncateSummary(text string) string {
	if len(text) > summaryLimit {
		return text[:summaryLimit] + "..."
	}
	return text
}

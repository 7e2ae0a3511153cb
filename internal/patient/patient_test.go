// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package patient

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleDocument = `Patient Name: John Doe
Age: 55
Allergies: Penicillin, Sulfa
Diagnosis: Type 2 Diabetes, Hypertension
WBC: 5.2
Hemoglobin: 13.5
Glucose: 142.0
`

func TestParseRecordFields(t *testing.T) {
	record := ParseRecord(sampleDocument)

	if record.Name != "John Doe" {
		t.Errorf("Name = %q", record.Name)
	}
	if age, ok := record.AgeYears(); !ok || age != 55 {
		t.Errorf("Age = %v, %v, want 55", age, ok)
	}
	if len(record.Allergies) != 2 || record.Allergies[0] != "Penicillin" || record.Allergies[1] != "Sulfa" {
		t.Errorf("Allergies = %v", record.Allergies)
	}
	if len(record.Conditions) != 2 || record.Conditions[0] != "Type 2 Diabetes" {
		t.Errorf("Conditions = %v", record.Conditions)
	}
	if record.LabResults["WBC"] != 5.2 || record.LabResults["Hemoglobin"] != 13.5 || record.LabResults["Glucose"] != 142.0 {
		t.Errorf("LabResults = %v", record.LabResults)
	}
	if record.RawText != sampleDocument {
		t.Error("RawText should carry the full source text")
	}
}

func TestParseRecordAgePhrasings(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"Age: 42", 42},
		{"The patient is 67 years old.", 67},
		{"55 yo male with diabetes", 55},
	}

	for _, tt := range tests {
		record := ParseRecord(tt.text)
		if age, ok := record.AgeYears(); !ok || age != tt.want {
			t.Errorf("ParseRecord(%q).Age = %v, %v, want %d", tt.text, age, ok, tt.want)
		}
	}
}

func TestParseRecordNoKnownAllergies(t *testing.T) {
	for _, text := range []string{"Allergies: None", "Allergies: NKDA"} {
		record := ParseRecord(text)
		if len(record.Allergies) != 0 {
			t.Errorf("ParseRecord(%q).Allergies = %v, want empty", text, record.Allergies)
		}
	}
}

func TestParseRecordMissingFields(t *testing.T) {
	record := ParseRecord("An unstructured note with no labeled fields.")

	if record.Name != "Unknown" {
		t.Errorf("Name = %q, want Unknown", record.Name)
	}
	if record.Age != nil {
		t.Errorf("Age = %v, want nil", *record.Age)
	}
	if len(record.Allergies) != 0 || len(record.Conditions) != 0 || len(record.LabResults) != 0 {
		t.Errorf("expected empty clinical fields, got %+v", record)
	}
}

func TestParseRecordNameStopsAtLineEnd(t *testing.T) {
	record := ParseRecord("Name: Jane Roe\nAge: 44")
	if record.Name != "Jane Roe" {
		t.Errorf("Name = %q, want %q", record.Name, "Jane Roe")
	}
}

func TestParseRecordSummaryTruncated(t *testing.T) {
	long := strings.Repeat("x", 600)
	record := ParseRecord(long)

	if len(record.Summary) != summaryLimit+3 {
		t.Errorf("Summary length = %d, want %d", len(record.Summary), summaryLimit+3)
	}
	if !strings.HasSuffix(record.Summary, "...") {
		t.Error("truncated summary should end with ellipsis")
	}
}

func TestParseRecordHgbAliasDoesNotOverride(t *testing.T) {
	record := ParseRecord("Hemoglobin: 13.5\nHgb: 12.0")
	if record.LabResults["Hemoglobin"] != 13.5 {
		t.Errorf("Hemoglobin = %v, want first match 13.5", record.LabResults["Hemoglobin"])
	}
}

func TestPlainTextExtractor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	if err := os.WriteFile(path, []byte(sampleDocument), 0o644); err != nil {
		t.Fatal(err)
	}

	record, err := ExtractRecord(context.Background(), &PlainTextExtractor{}, path)
	if err != nil {
		t.Fatalf("ExtractRecord: %v", err)
	}
	if record.Name != "John Doe" {
		t.Errorf("Name = %q", record.Name)
	}
}

func TestPlainTextExtractorRejectsPDF(t *testing.T) {
	if _, err := (&PlainTextExtractor{}).Extract(context.Background(), "scan.pdf"); err == nil {
		t.Fatal("expected error for .pdf input")
	}
}

func TestPlainTextExtractorMissingFile(t *testing.T) {
	if _, err := ExtractRecord(context.Background(), &PlainTextExtractor{}, filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

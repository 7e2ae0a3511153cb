// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package criteria

import (
	"strings"
	"testing"

	"github.com/pdiddy/trialmatch/pkg/types"
)

func TestParseInclusionAndExclusion(t *testing.T) {
	text := "Inclusion Criteria:\n1. Diabetes diagnosis\nExclusion Criteria:\n1. Cancer history"

	got := Parse(text)

	want := []types.Criterion{
		{Text: "Diabetes diagnosis", Type: types.Inclusion},
		{Text: "Cancer history", Type: types.Exclusion},
	}
	if len(got) != len(want) {
		t.Fatalf("Parse returned %d criteria, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("criterion %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseBulletStyles(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "bullet characters",
			text: "• Age 18 or older required\n- No prior chemotherapy treatment\n* Able to provide informed consent",
			want: []string{"Age 18 or older required", "No prior chemotherapy treatment", "Able to provide informed consent"},
		},
		{
			name: "numbered items",
			text: "1. Confirmed type 2 diabetes\n2. Stable insulin dose for 3 months\n10. Willing to attend follow-ups",
			want: []string{"Confirmed type 2 diabetes", "Stable insulin dose for 3 months", "Willing to attend follow-ups"},
		},
		{
			name: "short fragments dropped",
			text: "1. Age >= 18 years old\n\n- n/a\nSee above",
			want: []string{"Age >= 18 years old"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("Parse returned %d criteria, want %d: %+v", len(got), len(tt.want), got)
			}
			for i, w := range tt.want {
				if got[i].Text != w {
					t.Errorf("criterion %d text = %q, want %q", i, got[i].Text, w)
				}
				if got[i].Type != types.Inclusion {
					t.Errorf("criterion %d type = %q, want inclusion", i, got[i].Type)
				}
			}
		})
	}
}

func TestParseEmptyText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n"} {
		if got := Parse(text); len(got) != 0 {
			t.Errorf("Parse(%q) = %+v, want empty", text, got)
		}
	}
}

func TestParseExclusionOnly(t *testing.T) {
	got := Parse("Exclusion Criteria:\n1. Severe kidney disease history")

	if len(got) != 1 {
		t.Fatalf("Parse returned %d criteria, want 1: %+v", len(got), got)
	}
	if got[0].Type != types.Exclusion {
		t.Errorf("type = %q, want exclusion", got[0].Type)
	}
	if got[0].Text != "Severe kidney disease history" {
		t.Errorf("text = %q", got[0].Text)
	}
}

// Re-parsing the text of already-parsed criteria must yield the same items:
// stripping is stable and no double-splitting artifacts appear.
func TestParseIdempotent(t *testing.T) {
	text := "Inclusion Criteria:\n1. Diabetes diagnosis confirmed\n• Age 40-65 at enrollment"

	first := Parse(text)

	var lines []string
	for _, c := range first {
		lines = append(lines, c.Text)
	}
	second := Parse(strings.Join(lines, "\n"))

	if len(second) != len(first) {
		t.Fatalf("re-parse returned %d criteria, want %d", len(second), len(first))
	}
	for i := range first {
		if second[i].Text != first[i].Text {
			t.Errorf("criterion %d text changed on re-parse: %q → %q", i, first[i].Text, second[i].Text)
		}
	}
}

func TestSynthesize(t *testing.T) {
	tests := []struct {
		name                   string
		minAge, maxAge, gender string
		want                   []string
	}{
		{
			name:   "all fields",
			minAge: "18 Years", maxAge: "65 Years", gender: "FEMALE",
			want: []string{"Minimum age: 18 Years", "Maximum age: 65 Years", "Gender: FEMALE"},
		},
		{
			name:   "gender ALL omitted",
			minAge: "18 Years", gender: "ALL",
			want: []string{"Minimum age: 18 Years"},
		},
		{
			name: "nothing to synthesize",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Synthesize(tt.minAge, tt.maxAge, tt.gender)
			if len(got) != len(tt.want) {
				t.Fatalf("Synthesize returned %d criteria, want %d: %+v", len(got), len(tt.want), got)
			}
			for i, w := range tt.want {
				if got[i].Text != w {
					t.Errorf("criterion %d = %q, want %q", i, got[i].Text, w)
				}
				if got[i].Type != types.Inclusion {
					t.Errorf("criterion %d type = %q, want inclusion", i, got[i].Type)
				}
			}
		})
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders a match run as a Markdown eligibility report.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/pdiddy/trialmatch/pkg/types"
)

// now is swapped in tests for deterministic file names.
var now = time.Now

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"decision": decision,
	"mark":     mark,
	"cell":     cell,
	"join":     strings.Join,
	"age":      func(p *int) int { return *p },
}).Parse(`# Trial Eligibility Report

- **Document:** {{.Result.DocumentPath}}
- **Generated:** {{.GeneratedAt}}
- **Status:** {{.Result.Status}}
{{- if .Result.Error}}
- **Error:** {{.Result.Error}}
{{- end}}
{{- if .Result.Patient}}

## Patient

- **Name:** {{.Result.Patient.Name}}
{{- if .Result.Patient.Age}}
- **Age:** {{age .Result.Patient.Age}}
{{- end}}
{{- if .Result.Patient.Allergies}}
- **Allergies:** {{join .Result.Patient.Allergies ", "}}
{{- end}}
{{- if .Result.Patient.Conditions}}
- **Conditions:** {{join .Result.Patient.Conditions ", "}}
{{- end}}
{{- end}}
{{- if .Result.Verdicts}}

## Trials

{{.Result.EligibleCount}} of {{len .Result.Verdicts}} trials eligible.
{{range .Result.Verdicts}}
### {{.TrialID}}: {{cell .Title}} ({{decision .OverallEligible}})

{{.Summary}}
{{if .CriteriaVerdicts}}
| Criterion | Type | Met | Confidence | Source | Explanation |
|-----------|------|-----|------------|--------|-------------|
{{- range .CriteriaVerdicts}}
| {{cell .Criterion.Text}} | {{.Criterion.Type}} | {{mark .Eligible}} | {{.Confidence}} | {{.EvaluatedBy}} | {{cell .Explanation}} |
{{- end}}
{{end}}
{{- end}}
{{- end}}
`))

type reportData struct {
	Result      *types.WorkflowResult
	GeneratedAt string
}

func decision(eligible bool) string {
	if eligible {
		return "ELIGIBLE"
	}
	return "NOT ELIGIBLE"
}

func mark(eligible bool) string {
	if eligible {
		return "yes"
	}
	return "no"
}

// cell makes free text safe inside a Markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// Render produces the Markdown report for one run.
func Render(result *types.WorkflowResult) (string, error) {
	var b strings.Builder
	data := reportData{
		Result:      result,
		GeneratedAt: now().UTC().Format(time.RFC3339),
	}
	if err := reportTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return b.String(), nil
}

// Write renders the report and saves it under cfg.OutputDir as
// report-[timestamp].md, returning the written path.
func Write(result *types.WorkflowResult, cfg types.ReportConfig) (string, error) {
	content, err := Render(result)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	name := "report-" + now().UTC().Format("20060102-150405") + ".md"
	path := filepath.Join(cfg.OutputDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eligibility

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"text/template"

	"github.com/pdiddy/trialmatch/pkg/types"
)

// eligibilityPromptTmpl is the prompt sent to the completion API for each
// criterion. It embeds the patient's demographic and clinical summary, the
// trial context, and the single criterion under evaluation, and pins the
// response to three labeled lines the parser scans for.
var eligibilityPromptTmpl = template.Must(template.New("eligibility").Parse(`You are a clinical trial eligibility expert. Analyze whether a patient meets a specific eligibility criterion.

PATIENT INFORMATION:
- Name: {{.Name}}
- Age: {{.Age}}
- Allergies: {{.Allergies}}
- Medical Conditions: {{.Conditions}}
- Lab Results: {{.LabResults}}
- Summary: {{.Summary}}

TRIAL INFORMATION:
- Trial ID: {{.TrialID}}
- Title: {{.Title}}
- Conditions: {{.TrialConditions}}

ELIGIBILITY CRITERION TO EVALUATE:
- Type: {{.CriterionType}} criterion
- Criterion: {{.Criterion}}

INSTRUCTIONS:
1. Analyze if the patient meets this specific criterion
2. Provide a clear YES or NO answer
3. Give a brief explanation (1-2 sentences)
4. Consider the criterion type (inclusion vs exclusion)

RESPONSE FORMAT:
ELIGIBLE: [YES/NO]
EXPLANATION: [Brief explanation]
CONFIDENCE: [HIGH/MEDIUM/LOW]
`))

// promptData flattens patient, trial, and criterion into template fields.
type promptData struct {
	Name            string
	Age             string
	Allergies       string
	Conditions      string
	LabResults      string
	Summary         string
	TrialID         string
	Title           string
	TrialConditions string
	CriterionType   string
	Criterion       string
}

// renderPrompt executes the eligibility prompt template for one criterion.
func renderPrompt(patient *types.PatientRecord, criterion types.Criterion, trial *types.Trial) (string, error) {
	data := promptData{
		Name:            orUnknown(patient.Name),
		Age:             "Unknown",
		Allergies:       strings.Join(patient.Allergies, ", "),
		Conditions:      strings.Join(patient.Conditions, ", "),
		Summary:         orDefault(patient.Summary, "No summary available"),
		TrialID:         trial.TrialID,
		Title:           trial.Title,
		TrialConditions: strings.Join(trial.Conditions, ", "),
		CriterionType:   string(criterion.Type),
		Criterion:       criterion.Text,
	}

	if age, ok := patient.AgeYears(); ok {
		data.Age = strconv.Itoa(age)
	}

	labs, err := json.Marshal(patient.LabResults)
	if err != nil {
		return "", err
	}
	data.LabResults = string(labs)

	var buf bytes.Buffer
	if err := eligibilityPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func orUnknown(s string) string {
	return orDefault(s, "Unknown")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

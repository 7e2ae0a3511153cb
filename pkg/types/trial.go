// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CriterionType distinguishes inclusion from exclusion criteria.
type CriterionType string

const (
	Inclusion CriterionType = "inclusion"
	Exclusion CriterionType = "exclusion"
)

// Criterion is one atomic eligibility rule extracted from a trial's
// free-text eligibility description.
type Criterion struct {
	// Text is the criterion as it appears in the source, bullets stripped.
	Text string `json:"criterion" yaml:"criterion"`

	// Type marks the criterion as inclusion or exclusion.
	Type CriterionType `json:"type" yaml:"type"`
}

// Trial is a clinical trial record as returned by the trial search backend.
// The core treats trials as read-only input.
type Trial struct {
	// TrialID is the registry identifier (e.g. "NCT01234567").
	TrialID string `json:"trial_id" yaml:"trial_id"`

	// Title is the brief trial title.
	Title string `json:"title" yaml:"title"`

	// Conditions lists the conditions the trial studies, in source order.
	Conditions []string `json:"conditions" yaml:"conditions"`

	// Criteria holds the parsed eligibility criteria, inclusion first,
	// in source order.
	Criteria []Criterion `json:"eligibility_criteria" yaml:"eligibility_criteria"`

	// Description is the detailed trial description.
	Description string `json:"description" yaml:"description"`

	// Status is the recruitment status (e.g. "RECRUITING").
	Status string `json:"status" yaml:"status"`
}

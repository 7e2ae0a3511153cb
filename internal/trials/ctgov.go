// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trials

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/trialmatch/internal/criteria"
	"github.com/pdiddy/trialmatch/internal/httputil"
	"github.com/pdiddy/trialmatch/pkg/types"
)

// ctgovStudiesBase is the ClinicalTrials.gov v2 studies endpoint. Declared
// as a var so tests can substitute an httptest server.
var ctgovStudiesBase = "https://clinicaltrials.gov/api/v2/studies"

// studyFields is the field list requested from the API; everything the
// pipeline consumes and nothing more.
const studyFields = "NCTId,BriefTitle,DetailedDescription,Condition,EligibilityCriteria,MinimumAge,MaximumAge,Sex,HealthyVolunteers,StdAge"

// Client queries the ClinicalTrials.gov v2 API.
type Client struct {
	HTTP *http.Client
}

// ctgovResponse mirrors the slice of the studies API the pipeline reads.
type ctgovResponse struct {
	Studies []ctgovStudy `json:"studies"`
}

type ctgovStudy struct {
	ProtocolSection struct {
		IdentificationModule struct {
			NCTID      string `json:"nctId"`
			BriefTitle string `json:"briefTitle"`
		} `json:"identificationModule"`
		DescriptionModule struct {
			DetailedDescription string `json:"detailedDescription"`
		} `json:"descriptionModule"`
		ConditionsModule struct {
			Conditions []string `json:"conditions"`
		} `json:"conditionsModule"`
		EligibilityModule struct {
			EligibilityCriteria string `json:"eligibilityCriteria"`
			MinimumAge          string `json:"minimumAge"`
			MaximumAge          string `json:"maximumAge"`
			Sex                 string `json:"sex"`
			Gender              string `json:"gender"`
		} `json:"eligibilityModule"`
	} `json:"protocolSection"`
}

// Search queries the studies endpoint with a condition query and returns
// structured trials. Each trial's free-text eligibility section is parsed
// into criteria, followed by criteria synthesized from the structured age
// and gender fields.
func (c *Client) Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.Trial, error) {
	if query == "" {
		return nil, fmt.Errorf("empty trial search query")
	}

	maxStudies := cfg.MaxStudies
	if maxStudies <= 0 {
		maxStudies = 10
	}
	status := cfg.Status
	if status == "" {
		status = "RECRUITING"
	}

	params := url.Values{
		"query.cond":           {query},
		"filter.overallStatus": {status},
		"format":               {"json"},
		"countTotal":           {"true"},
		"pageSize":             {strconv.Itoa(maxStudies)},
		"fields":               {studyFields},
	}

	body, err := c.get(ctx, ctgovStudiesBase+"?"+params.Encode(), cfg)
	if err != nil {
		return nil, err
	}

	var cr ctgovResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("parsing ClinicalTrials.gov response: %w", err)
	}

	trialList := make([]types.Trial, 0, len(cr.Studies))
	for _, study := range cr.Studies {
		trialList = append(trialList, structureStudy(study, status))
	}
	return trialList, nil
}

// Fetch retrieves a single study by NCT identifier.
func (c *Client) Fetch(ctx context.Context, nctID string, cfg types.SearchConfig) (types.Trial, error) {
	if nctID == "" {
		return types.Trial{}, fmt.Errorf("empty NCT identifier")
	}

	params := url.Values{
		"format": {"json"},
		"fields": {studyFields},
	}

	body, err := c.get(ctx, ctgovStudiesBase+"/"+url.PathEscape(nctID)+"?"+params.Encode(), cfg)
	if err != nil {
		return types.Trial{}, err
	}

	var study ctgovStudy
	if err := json.Unmarshal(body, &study); err != nil {
		return types.Trial{}, fmt.Errorf("parsing study %s: %w", nctID, err)
	}
	return structureStudy(study, ""), nil
}

// get performs a GET with the shared HTTP settings and rate-limit retry.
func (c *Client) get(ctx context.Context, reqURL string, cfg types.SearchConfig) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("ClinicalTrials.gov API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ClinicalTrials.gov API returned HTTP %d", resp.StatusCode)
	}

	var buf json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&buf); err != nil {
		return nil, fmt.Errorf("reading ClinicalTrials.gov response: %w", err)
	}
	return buf, nil
}

// structureStudy converts one API study into a Trial with parsed criteria.
func structureStudy(study ctgovStudy, status string) types.Trial {
	ps := study.ProtocolSection
	em := ps.EligibilityModule

	parsed := criteria.Parse(em.EligibilityCriteria)

	gender := em.Sex
	if gender == "" {
		gender = em.Gender
	}
	parsed = append(parsed, criteria.Synthesize(em.MinimumAge, em.MaximumAge, gender)...)

	trialID := ps.IdentificationModule.NCTID
	if trialID == "" {
		trialID = "Unknown"
	}
	title := ps.IdentificationModule.BriefTitle
	if title == "" {
		title = "Unknown Title"
	}

	return types.Trial{
		TrialID:     trialID,
		Title:       title,
		Conditions:  ps.ConditionsModule.Conditions,
		Criteria:    parsed,
		Description: ps.DescriptionModule.DetailedDescription,
		Status:      status,
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eligibility

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/trialmatch/internal/httputil"
)

// geminiAPIBase is the Generative Language API root. Package-level var for
// test substitution.
var geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiBackend calls the Gemini generateContent API to evaluate one
// criterion prompt.
type GeminiBackend struct {
	APIKey     string
	Model      string
	Client     *http.Client
	MaxRetries int
}

// geminiRequest is the request body for the generateContent endpoint.
type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

// geminiContent is a single content entry in the request.
type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

// geminiPart is a text part of a content entry.
type geminiPart struct {
	Text string `json:"text"`
}

// geminiGenConfig bounds the completion.
type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// geminiResponse is the response body from the generateContent endpoint.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Complete sends the prompt to the Gemini API and returns the completion
// text of the first candidate.
func (g *GeminiBackend) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxTokens,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", geminiAPIBase, g.Model, g.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, g.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Gemini API returned %d: %s", resp.StatusCode, string(body))
	}

	var gResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return "", fmt.Errorf("decoding Gemini response: %w", err)
	}

	if len(gResp.Candidates) == 0 || len(gResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("Gemini API returned no candidates")
	}

	return gResp.Candidates[0].Content.Parts[0].Text, nil
}

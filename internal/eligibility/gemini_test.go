// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eligibility

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiTestServer(t *testing.T, handler http.HandlerFunc) *GeminiBackend {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	orig := geminiAPIBase
	geminiAPIBase = server.URL
	t.Cleanup(func() { geminiAPIBase = orig })

	return &GeminiBackend{APIKey: "test-key", Model: "test-model", Client: server.Client()}
}

func TestGeminiCompleteSendsGenerationConfig(t *testing.T) {
	var captured struct {
		Contents []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
		GenerationConfig struct {
			Temperature     float64 `json:"temperature"`
			MaxOutputTokens int     `json:"maxOutputTokens"`
		} `json:"generationConfig"`
	}

	backend := geminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ELIGIBLE: YES"}]}}]}`))
	})

	got, err := backend.Complete(context.Background(), "prompt text", 500, 0.1)
	require.NoError(t, err)
	assert.Equal(t, "ELIGIBLE: YES", got)

	require.Len(t, captured.Contents, 1)
	require.Len(t, captured.Contents[0].Parts, 1)
	assert.Equal(t, "prompt text", captured.Contents[0].Parts[0].Text)
	assert.Equal(t, 0.1, captured.GenerationConfig.Temperature)
	assert.Equal(t, 500, captured.GenerationConfig.MaxOutputTokens)
}

func TestGeminiCompleteHTTPError(t *testing.T) {
	backend := geminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	})

	_, err := backend.Complete(context.Background(), "prompt", 500, 0.1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestGeminiCompleteEmptyCandidates(t *testing.T) {
	backend := geminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := backend.Complete(context.Background(), "prompt", 500, 0.1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

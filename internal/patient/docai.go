// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package patient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/trialmatch/internal/httputil"
)

// docAIBase overrides the Document AI host when non-empty. Tests point it
// at an httptest server; production derives the regional host from the
// processor location.
var docAIBase = ""

// DocumentAIExtractor sends documents to the Google Document AI OCR
// processor and returns the recognized text.
type DocumentAIExtractor struct {
	Project     string
	Location    string
	Processor   string
	AccessToken string
	Client      *http.Client
}

// docAIRequest is the process request body: the raw document inline,
// base64-encoded.
type docAIRequest struct {
	RawDocument docAIRawDocument `json:"rawDocument"`
}

type docAIRawDocument struct {
	Content  string `json:"content"`
	MimeType string `json:"mimeType"`
}

// docAIResponse is the slice of the process response the pipeline reads.
type docAIResponse struct {
	Document struct {
		Text string `json:"text"`
	} `json:"document"`
}

// Extract uploads the document and returns the text layer Document AI
// recognized.
func (e *DocumentAIExtractor) Extract(ctx context.Context, path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}

	location := e.Location
	if location == "" {
		location = "us"
	}

	reqBody := docAIRequest{
		RawDocument: docAIRawDocument{
			Content:  base64.StdEncoding.EncodeToString(content),
			MimeType: mimeTypeFor(path),
		},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint(location), bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.AccessToken)

	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return "", fmt.Errorf("calling Document AI: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Document AI returned %d: %s", resp.StatusCode, string(body))
	}

	var dResp docAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&dResp); err != nil {
		return "", fmt.Errorf("decoding Document AI response: %w", err)
	}

	if dResp.Document.Text == "" {
		return "", fmt.Errorf("Document AI returned no text for %s", path)
	}
	return dResp.Document.Text, nil
}

// endpoint builds the regional process URL for this extractor's processor.
func (e *DocumentAIExtractor) endpoint(location string) string {
	base := docAIBase
	if base == "" {
		base = fmt.Sprintf("https://%s-documentai.googleapis.com", location)
	}
	return fmt.Sprintf("%s/v1/projects/%s/locations/%s/processors/%s:process", base, e.Project, location, e.Processor)
}

// mimeTypeFor maps a document extension to the MIME type Document AI expects.
func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".tif", ".tiff":
		return "image/tiff"
	default:
		return "application/pdf"
	}
}

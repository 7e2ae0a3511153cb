// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package patient

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/trialmatch/pkg/types"
)

// Extractor obtains raw text from a patient document. Implementations
// cover plain-text files, the Document AI API, and a local markitdown
// container.
type Extractor interface {
	// Extract reads the document at path and returns its text content.
	Extract(ctx context.Context, path string) (string, error)
}

// ExtractRecord runs the extractor on a document and parses the resulting
// text into a PatientRecord. Extraction failure is the one fatal error of
// the parsing stage; text that parses poorly still yields a record.
func ExtractRecord(ctx context.Context, extractor Extractor, path string) (*types.PatientRecord, error) {
	text, err := extractor.Extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extracting document %s: %w", path, err)
	}
	return ParseRecord(text), nil
}

// NewExtractor selects the extraction backend from configuration.
func NewExtractor(cfg types.ExtractionConfig) (Extractor, error) {
	switch cfg.Backend {
	case types.BackendPlainText, "":
		return &PlainTextExtractor{}, nil
	case types.BackendDocumentAI:
		if cfg.Project == "" || cfg.Processor == "" {
			return nil, fmt.Errorf("documentai backend requires project and processor")
		}
		return &DocumentAIExtractor{
			Project:     cfg.Project,
			Location:    cfg.Location,
			Processor:   cfg.Processor,
			AccessToken: cfg.AccessToken,
		}, nil
	case types.BackendMarkitdown:
		return NewMarkitdownExtractor()
	default:
		return nil, fmt.Errorf("unknown extraction backend %q", cfg.Backend)
	}
}

// PlainTextExtractor reads .txt and .md documents directly from disk.
type PlainTextExtractor struct{}

// Extract returns the file contents. Binary document formats are rejected
// so a PDF does not silently parse as garbage.
func (e *PlainTextExtractor) Extract(_ context.Context, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".text", "":
	default:
		return "", fmt.Errorf("plaintext extractor cannot read %s: use the documentai or markitdown backend", filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}
	return string(data), nil
}

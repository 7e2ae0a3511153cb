// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportYAML writes one run, fully reconstructed, to
// historyDir/[runID].yaml and returns the written path.
func (s *Store) ExportYAML(ctx context.Context, runID string) (string, error) {
	run, err := s.Show(ctx, runID)
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(run)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}

	path := filepath.Join(s.historyDir, runID+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	return path, nil
}

// ExportJSON writes one run, fully reconstructed, to
// historyDir/[runID].json and returns the written path.
func (s *Store) ExportJSON(ctx context.Context, runID string) (string, error) {
	run, err := s.Show(ctx, runID)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}

	path := filepath.Join(s.historyDir, runID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	return path, nil
}

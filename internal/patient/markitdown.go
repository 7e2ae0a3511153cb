// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package patient

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
)

const imageMarkitdown = "markitdown:latest"

// containerRuntimes lists the container binaries probed, in preference order.
var containerRuntimes = []string{"docker", "podman"}

// MarkitdownExtractor converts PDF documents to text by piping them through
// the markitdown container image with a locally available container runtime.
type MarkitdownExtractor struct {
	runtime string
}

// NewMarkitdownExtractor probes for docker or podman and verifies the
// markitdown image exists locally.
func NewMarkitdownExtractor() (*MarkitdownExtractor, error) {
	for _, bin := range containerRuntimes {
		if _, err := exec.LookPath(bin); err != nil {
			continue
		}
		if err := exec.Command(bin, "image", "inspect", imageMarkitdown).Run(); err != nil {
			return nil, fmt.Errorf("markitdown image not available in %s: %w", bin, err)
		}
		return &MarkitdownExtractor{runtime: bin}, nil
	}
	return nil, fmt.Errorf("no container runtime found: install docker or podman")
}

// Extract pipes the document through the markitdown container and returns
// the text it produces.
func (e *MarkitdownExtractor) Extract(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening document %s: %w", path, err)
	}
	defer f.Close()

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, e.runtime, "run", "--rm", "-i", imageMarkitdown)
	cmd.Stdin = f
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("converting %s with markitdown: %w", path, err)
	}

	if out.Len() == 0 {
		return "", fmt.Errorf("markitdown produced empty output for %s", path)
	}
	return out.String(), nil
}

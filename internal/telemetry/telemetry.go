// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package telemetry records structured workflow events. The coordinator
// emits one event per stage transition and one per error; a session is
// opened at workflow start and closed at workflow end. Callers that need
// no telemetry inject a Nop sink and the pipeline behaves identically.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Sink receives workflow events. Implementations must be safe for
// concurrent use.
type Sink interface {
	// Step records one workflow step with structured fields.
	Step(name string, fields map[string]any)

	// Error records a failure event.
	Error(name, msg string, fields map[string]any)

	// Close flushes and releases the session.
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Step(string, map[string]any)          {}
func (Nop) Error(string, string, map[string]any) {}
func (Nop) Close() error                         { return nil }

// event is one line in a session file.
type event struct {
	Step      int            `json:"step"`
	StepName  string         `json:"step_name"`
	Timestamp time.Time      `json:"timestamp"`
	Error     string         `json:"error,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Session writes events as JSON lines to a per-session file, one session
// per workflow run, with a monotonically increasing step counter.
type Session struct {
	mu    sync.Mutex
	f     *os.File
	enc   *json.Encoder
	steps int
	now   func() time.Time
}

// NewSession opens a session file named after the session ID under dir,
// creating the directory as needed. An empty ID derives one from the
// current time.
func NewSession(dir, id string) (*Session, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating telemetry directory: %w", err)
	}

	if id == "" {
		id = "trialmatch-session-" + time.Now().Format("20060102-150405")
	}

	f, err := os.Create(filepath.Join(dir, id+".jsonl"))
	if err != nil {
		return nil, fmt.Errorf("creating session file: %w", err)
	}

	return &Session{f: f, enc: json.NewEncoder(f), now: time.Now}, nil
}

// Step records one workflow step.
func (s *Session) Step(name string, fields map[string]any) {
	s.write(event{StepName: name, Data: fields})
}

// Error records a failure event.
func (s *Session) Error(name, msg string, fields map[string]any) {
	s.write(event{StepName: name, Error: msg, Data: fields})
}

func (s *Session) write(e event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.steps++
	e.Step = s.steps
	e.Timestamp = s.now()

	// A telemetry write failure must never disturb the pipeline.
	_ = s.enc.Encode(e)
}

// Close flushes and closes the session file.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}

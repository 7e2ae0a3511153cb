// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package telemetry

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func readEvents(t *testing.T, path string) []event {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var events []event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("bad event line %q: %v", scanner.Text(), err)
		}
		events = append(events, e)
	}
	return events
}

func TestSessionStepCounter(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSession(dir, "test-session")
	if err != nil {
		t.Fatal(err)
	}

	s.Step("start_workflow", map[string]any{"document": "note.txt"})
	s.Step("parsing_document", nil)
	s.Error("search_error", "connection refused", nil)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	events := readEvents(t, filepath.Join(dir, "test-session.jsonl"))
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for i, e := range events {
		if e.Step != i+1 {
			t.Errorf("event %d has step %d, want %d", i, e.Step, i+1)
		}
		if e.Timestamp.IsZero() {
			t.Errorf("event %d has zero timestamp", i)
		}
	}
	if events[0].Data["document"] != "note.txt" {
		t.Errorf("step data not recorded: %+v", events[0].Data)
	}
	if events[2].Error != "connection refused" {
		t.Errorf("error event message = %q", events[2].Error)
	}
}

func TestSessionDerivesID(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSession(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d files, want 1", len(entries))
	}
}

func TestNopSink(t *testing.T) {
	var sink Sink = Nop{}
	sink.Step("anything", nil)
	sink.Error("anything", "msg", nil)
	if err := sink.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

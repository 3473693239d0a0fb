package commands

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/lwm2m-agent/lwm2mcore/pkg/log"
)

func readAll(t *testing.T, path string) []log.Event {
	t.Helper()
	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer reader.Close()

	var events []log.Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read event: %v", err)
		}
		events = append(events, event)
	}
	return events
}

func TestFilterByRegistryID(t *testing.T) {
	ts := time.Date(2026, 10, 19, 10, 15, 32, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, RegistryID: "reg-1", Category: log.CategoryDispatch},
		{Timestamp: ts, RegistryID: "reg-2", Category: log.CategoryDispatch},
		{Timestamp: ts, RegistryID: "reg-1", Category: log.CategoryLifecycle},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.rlog")

	err := RunFilter(path, FilterOptions{
		Output:     outPath,
		RegistryID: "reg-1",
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	got := readAll(t, outPath)
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	for _, e := range got {
		if e.RegistryID != "reg-1" {
			t.Errorf("expected reg-1, got %s", e.RegistryID)
		}
	}
}

func TestFilterByTimeRange(t *testing.T) {
	base := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: base, Category: log.CategoryDispatch},
		{Timestamp: base.Add(30 * time.Minute), Category: log.CategoryDispatch},
		{Timestamp: base.Add(2 * time.Hour), Category: log.CategoryDispatch},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.rlog")

	err := RunFilter(path, FilterOptions{
		Output:    outPath,
		TimeStart: "2026-10-19T10:15:00Z",
		TimeEnd:   "2026-10-19T11:00:00Z",
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	got := readAll(t, outPath)
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if !got[0].Timestamp.Equal(base.Add(30 * time.Minute)) {
		t.Errorf("unexpected event at %s", got[0].Timestamp)
	}
}

func TestFilterByCategoryAndURI(t *testing.T) {
	ts := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Category: log.CategoryDispatch, URI: "/3/0/9"},
		{Timestamp: ts, Category: log.CategoryObserve, URI: "/3/0/9"},
		{Timestamp: ts, Category: log.CategoryDispatch, URI: "/5/0/3"},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.rlog")

	err := RunFilter(path, FilterOptions{
		Output:    outPath,
		Category:  "dispatch",
		URIPrefix: "/3/0",
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	got := readAll(t, outPath)
	if len(got) != 1 || got[0].URI != "/3/0/9" || got[0].Category != log.CategoryDispatch {
		t.Errorf("unexpected events: %+v", got)
	}
}

func TestFilterInvalidOptions(t *testing.T) {
	path := createTestLogFile(t, nil)
	outPath := filepath.Join(t.TempDir(), "filtered.rlog")

	tests := []struct {
		name string
		opts FilterOptions
	}{
		{"bad start", FilterOptions{Output: outPath, TimeStart: "yesterday"}},
		{"bad end", FilterOptions{Output: outPath, TimeEnd: "10:00"}},
		{"bad category", FilterOptions{Output: outPath, Category: "message"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := RunFilter(path, tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

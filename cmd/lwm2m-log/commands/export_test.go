package commands

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lwm2m-agent/lwm2mcore/pkg/log"
	"github.com/lwm2m-agent/lwm2mcore/pkg/wire"
)

// createTestLogFile creates a temporary trace file with the given events.
func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.rlog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func TestExportToJSONL(t *testing.T) {
	ts := time.Date(2026, 10, 19, 10, 15, 32, 123456000, time.UTC)
	events := []log.Event{
		{
			Timestamp:  ts,
			RegistryID: "5f0c2a9e-1111-2222-3333-444455556666",
			Category:   log.CategoryDispatch,
			URI:        "/3/0/9",
			Dispatch: &log.DispatchEvent{
				Operation: wire.OpRead,
				Status:    wire.StatusContent,
				Size:      1,
			},
		},
		{
			Timestamp:  ts.Add(time.Second),
			RegistryID: "5f0c2a9e-1111-2222-3333-444455556666",
			Category:   log.CategoryLifecycle,
			URI:        "/3/0",
			Lifecycle:  &log.LifecycleEvent{Action: log.ActionObjectRemoved},
		},
	}
	path := createTestLogFile(t, events)
	out := filepath.Join(t.TempDir(), "out.jsonl")

	if err := RunExport(path, "jsonl", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()

	var lines []log.Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e log.Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("invalid JSON line %q: %v", scanner.Text(), err)
		}
		lines = append(lines, e)
	}

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Dispatch == nil || lines[0].Dispatch.Operation != wire.OpRead {
		t.Errorf("expected read dispatch, got %+v", lines[0])
	}
	if lines[1].URI != "/3/0" {
		t.Errorf("expected URI /3/0, got %q", lines[1].URI)
	}
}

func TestExportToCSV(t *testing.T) {
	ts := time.Date(2026, 10, 19, 10, 15, 32, 0, time.UTC)
	events := []log.Event{
		{
			Timestamp:  ts,
			RegistryID: "reg-1",
			Category:   log.CategoryDispatch,
			URI:        "/3/0/4",
			Dispatch: &log.DispatchEvent{
				Operation: wire.OpExecute,
				Status:    wire.StatusMethodNotAllowed,
			},
		},
		{
			Timestamp:  ts,
			RegistryID: "reg-1",
			Category:   log.CategoryObserve,
			URI:        "/3/0/9",
			Observe:    &log.ObserveEvent{Action: log.ObserveNotified, Size: 1},
		},
	}
	path := createTestLogFile(t, events)
	out := filepath.Join(t.TempDir(), "out.csv")

	if err := RunExport(path, "csv", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}

	want := []string{"2026-10-19T10:15:32.000000Z", "reg-1", "DISPATCH", "/3/0/4", "EXECUTE", "4.05 Method Not Allowed", "0"}
	for i, v := range want {
		if records[1][i] != v {
			t.Errorf("row 1 column %d = %q, want %q", i, records[1][i], v)
		}
	}
	if records[2][4] != "NOTIFIED" || records[2][6] != "1" {
		t.Errorf("unexpected observe row: %v", records[2])
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := createTestLogFile(t, nil)
	if err := RunExport(path, "xml", ""); err == nil {
		t.Error("expected error for unknown format")
	}
}

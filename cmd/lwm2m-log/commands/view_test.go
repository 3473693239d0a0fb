package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/lwm2m-agent/lwm2mcore/pkg/log"
	"github.com/lwm2m-agent/lwm2mcore/pkg/wire"
)

func TestFormatDispatchEvent(t *testing.T) {
	ts := time.Date(2026, 10, 19, 10, 15, 32, 123456000, time.UTC)
	event := log.Event{
		Timestamp:  ts,
		RegistryID: "abc12345-6789-0123-4567-890abcdef012",
		Category:   log.CategoryDispatch,
		URI:        "/3/0/9",
		Dispatch: &log.DispatchEvent{
			Operation:      wire.OpRead,
			Status:         wire.StatusContent,
			Size:           1,
			ProcessingTime: 1500 * time.Microsecond,
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	for _, want := range []string{
		"2026-10-19T10:15:32.123456Z",
		"[reg:abc12345]",
		"DISPATCH",
		"READ /3/0/9",
		"Status: 2.05 Content",
		"Size: 1 bytes",
		"Duration: 1.500ms",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got:\n%s", want, output)
		}
	}
}

func TestFormatFailedDispatch(t *testing.T) {
	event := log.Event{
		Category: log.CategoryDispatch,
		URI:      "/3/0/1",
		Dispatch: &log.DispatchEvent{
			Operation: wire.OpWrite,
			Status:    wire.StatusMethodNotAllowed,
			Error:     "operation not supported",
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if !strings.Contains(output, "4.05 Method Not Allowed") {
		t.Errorf("expected status, got:\n%s", output)
	}
	if !strings.Contains(output, "Error: operation not supported") {
		t.Errorf("expected error text, got:\n%s", output)
	}
	if strings.Contains(output, "Size:") {
		t.Errorf("zero size should be omitted, got:\n%s", output)
	}
}

func TestFormatLifecycleAndObserveEvents(t *testing.T) {
	tests := []struct {
		name  string
		event log.Event
		want  []string
	}{
		{
			name: "teardown",
			event: log.Event{
				Category:  log.CategoryLifecycle,
				Lifecycle: &log.LifecycleEvent{Action: log.ActionTeardown, Count: 3},
			},
			want: []string{"LIFECYCLE", "TEARDOWN", "Objects: 3"},
		},
		{
			name: "notification",
			event: log.Event{
				Category: log.CategoryObserve,
				URI:      "/3/0/9",
				Observe: &log.ObserveEvent{
					Action:        log.ObserveNotified,
					ObservationID: "obs-1",
					Reason:        "threshold",
					Size:          2,
				},
			},
			want: []string{"OBSERVE", "NOTIFIED /3/0/9", "Observation: obs-1", "Reason: threshold", "Size: 2 bytes"},
		},
		{
			name: "error",
			event: log.Event{
				Category: log.CategoryError,
				Error:    &log.ErrorEventData{Message: "read failed", Context: "poll"},
			},
			want: []string{"ERROR", "Error", "Message: read failed", "Context: poll"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			formatEvent(&buf, tt.event)
			output := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(output, want) {
					t.Errorf("expected %q in output, got:\n%s", want, output)
				}
			}
		})
	}
}

func TestShortenID(t *testing.T) {
	if got := shortenID("abc"); got != "abc" {
		t.Errorf("shortenID(abc) = %q", got)
	}
	if got := shortenID("0123456789"); got != "01234567" {
		t.Errorf("shortenID = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Nanosecond, "0.500us"},
		{2500 * time.Microsecond, "2.500ms"},
		{1500 * time.Millisecond, "1.500s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestParseFlags(t *testing.T) {
	c, err := ParseCategoryFlag("Observe")
	if err != nil || c != log.CategoryObserve {
		t.Errorf("ParseCategoryFlag(Observe) = %v, %v", c, err)
	}
	if _, err := ParseCategoryFlag("message"); err == nil {
		t.Error("expected error for unknown category")
	}

	op, err := ParseOperationFlag("exec")
	if err != nil || op != wire.OpExecute {
		t.Errorf("ParseOperationFlag(exec) = %v, %v", op, err)
	}
	if _, err := ParseOperationFlag("subscribe"); err == nil {
		t.Error("expected error for unknown operation")
	}
}

func TestRunViewFilters(t *testing.T) {
	ts := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Category: log.CategoryLifecycle, URI: "/3/0", Lifecycle: &log.LifecycleEvent{Action: log.ActionObjectAdded}},
		{Timestamp: ts, Category: log.CategoryDispatch, URI: "/3/0/9", Dispatch: &log.DispatchEvent{Operation: wire.OpRead, Status: wire.StatusContent}},
		{Timestamp: ts, Category: log.CategoryDispatch, URI: "/3/0/4", Dispatch: &log.DispatchEvent{Operation: wire.OpExecute, Status: wire.StatusChanged}},
		{Timestamp: ts, Category: log.CategoryDispatch, URI: "/5/0/2", Dispatch: &log.DispatchEvent{Operation: wire.OpExecute, Status: wire.StatusChanged}},
	}
	path := createTestLogFile(t, events)

	t.Run("category", func(t *testing.T) {
		c := log.CategoryLifecycle
		var buf bytes.Buffer
		if err := RunView(path, ViewFilter{Category: &c}, &buf); err != nil {
			t.Fatalf("RunView failed: %v", err)
		}
		if strings.Count(buf.String(), "[reg:") != 1 {
			t.Errorf("expected 1 event, got:\n%s", buf.String())
		}
	})

	t.Run("operation", func(t *testing.T) {
		op := wire.OpExecute
		var buf bytes.Buffer
		if err := RunView(path, ViewFilter{Operation: &op}, &buf); err != nil {
			t.Fatalf("RunView failed: %v", err)
		}
		if strings.Count(buf.String(), "EXECUTE") != 2 {
			t.Errorf("expected 2 execute events, got:\n%s", buf.String())
		}
	})

	t.Run("uri prefix", func(t *testing.T) {
		op := wire.OpExecute
		var buf bytes.Buffer
		if err := RunView(path, ViewFilter{Operation: &op, URIPrefix: "/3"}, &buf); err != nil {
			t.Fatalf("RunView failed: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "/3/0/4") || strings.Contains(output, "/5/0/2") {
			t.Errorf("unexpected output:\n%s", output)
		}
	})
}

func TestRunViewMissingFile(t *testing.T) {
	var buf bytes.Buffer
	if err := RunView("/nonexistent/trace.rlog", ViewFilter{}, &buf); err == nil {
		t.Error("expected error for missing file")
	}
}

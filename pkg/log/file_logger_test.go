package log

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.rlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func TestFileLoggerWritesHeaderThenEvents(t *testing.T) {
	before := time.Now()
	path := createTestLogFile(t, []Event{{
		Timestamp:  time.Now(),
		RegistryID: "reg-1",
		Category:   CategoryLifecycle,
		URI:        "/3/0",
		Lifecycle:  &LifecycleEvent{Action: ActionObjectAdded},
	}})

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	dec := traceDec.NewDecoder(f)
	h, err := readHeader(dec)
	if err != nil {
		t.Fatalf("readHeader: %v", err)
	}
	if h.Version != TraceVersion {
		t.Errorf("Version: got %d, want %d", h.Version, TraceVersion)
	}
	if h.Created.Before(before.Truncate(time.Second)) {
		t.Errorf("Created %v before %v", h.Created, before)
	}

	var decoded Event
	if err := dec.Decode(&decoded); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if decoded.Lifecycle == nil || decoded.Lifecycle.Action != ActionObjectAdded {
		t.Errorf("Lifecycle: got %+v", decoded.Lifecycle)
	}
	if err := dec.Decode(&decoded); err != io.EOF {
		t.Errorf("expected io.EOF after one event, got %v", err)
	}
}

func TestFileLoggerAppendsWithoutSecondHeader(t *testing.T) {
	path := createTestLogFile(t, []Event{{RegistryID: "first", Timestamp: time.Now()}})

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	created := reader.Header().Created
	reader.Close()

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	logger.Log(Event{RegistryID: "second", Timestamp: time.Now()})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reader, err = NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	if !reader.Header().Created.Equal(created) {
		t.Errorf("header rewritten: %v, want %v", reader.Header().Created, created)
	}
	read := readAll(t, reader)
	if len(read) != 2 || read[0].RegistryID != "first" || read[1].RegistryID != "second" {
		t.Errorf("got %+v", read)
	}
}

func TestFileLoggerRefusesForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	content := []byte("hello, not a trace\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileLogger(path); !errors.Is(err, ErrNotTrace) {
		t.Fatalf("expected ErrNotTrace, got %v", err)
	}
	if _, err := NewReader(path); !errors.Is(err, ErrNotTrace) {
		t.Errorf("reader: expected ErrNotTrace, got %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Errorf("file modified: %q", got)
	}
}

func TestReaderRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.rlog")
	data, err := traceEnc.Marshal(Header{Magic: traceMagic, Version: TraceVersion + 1, Created: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewReader(path); !errors.Is(err, ErrTraceVersion) {
		t.Errorf("expected ErrTraceVersion, got %v", err)
	}
	if _, err := NewFileLogger(path); !errors.Is(err, ErrTraceVersion) {
		t.Errorf("logger: expected ErrTraceVersion, got %v", err)
	}
}

func TestFileLoggerCountsDropped(t *testing.T) {
	logger, err := NewFileLogger(filepath.Join(t.TempDir(), "x.rlog"))
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.file.Close()

	logger.Log(Event{RegistryID: "lost"})
	logger.Log(Event{RegistryID: "lost"})
	if got := logger.Dropped(); got != 2 {
		t.Errorf("Dropped: got %d, want 2", got)
	}
}

func TestFileLoggerCloseIdempotent(t *testing.T) {
	logger, err := NewFileLogger(filepath.Join(t.TempDir(), "x.rlog"))
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	// Ignored after close.
	logger.Log(Event{RegistryID: "late"})
	if got := logger.Dropped(); got != 0 {
		t.Errorf("Dropped after close: got %d", got)
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.rlog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 25 {
				logger.Log(Event{Timestamp: time.Now(), Category: Category(i % 4)})
			}
		}()
	}
	wg.Wait()
	logger.Close()

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	if got := len(readAll(t, reader)); got != 200 {
		t.Errorf("read %d events, want 200", got)
	}
}

// Package commands implements the lwm2m-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lwm2m-agent/lwm2mcore/pkg/log"
	"github.com/lwm2m-agent/lwm2mcore/pkg/wire"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Category  *log.Category
	Operation *wire.Operation
	URIPrefix string
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [reg:id] CATEGORY Type uri
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	regID := shortenID(event.RegistryID)

	fmt.Fprintf(w, "%s [reg:%s] %-9s %s", ts, regID, event.Category.String(), eventType(event))
	if event.URI != "" {
		fmt.Fprintf(w, " %s", event.URI)
	}
	fmt.Fprintln(w)

	switch {
	case event.Lifecycle != nil:
		if event.Lifecycle.Count > 0 {
			fmt.Fprintf(w, "  Objects: %d\n", event.Lifecycle.Count)
		}
	case event.Dispatch != nil:
		formatDispatchDetails(w, event.Dispatch)
	case event.Observe != nil:
		formatObserveDetails(w, event.Observe)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// eventType returns the label describing an event's payload.
func eventType(event log.Event) string {
	switch {
	case event.Lifecycle != nil:
		return event.Lifecycle.Action.String()
	case event.Dispatch != nil:
		return event.Dispatch.Operation.String()
	case event.Observe != nil:
		return event.Observe.Action.String()
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

// shortenID returns the first 8 characters of a UUID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatDispatchDetails writes dispatch-specific details.
func formatDispatchDetails(w io.Writer, d *log.DispatchEvent) {
	fmt.Fprintf(w, "  Status: %s\n", d.Status.String())
	if d.Size > 0 {
		fmt.Fprintf(w, "  Size: %d bytes\n", d.Size)
	}
	if d.ProcessingTime > 0 {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(d.ProcessingTime))
	}
	if d.Error != "" {
		fmt.Fprintf(w, "  Error: %s\n", d.Error)
	}
}

// formatObserveDetails writes observation details.
func formatObserveDetails(w io.Writer, o *log.ObserveEvent) {
	if o.ObservationID != "" {
		fmt.Fprintf(w, "  Observation: %s\n", o.ObservationID)
	}
	if o.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", o.Reason)
	}
	if o.Size > 0 {
		fmt.Fprintf(w, "  Size: %d bytes\n", o.Size)
	}
}

// formatErrorDetails writes error details.
func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	return parseCategory(s)
}

// parseCategory parses a category string (case-insensitive).
func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "lifecycle":
		return log.CategoryLifecycle, nil
	case "dispatch":
		return log.CategoryDispatch, nil
	case "observe":
		return log.CategoryObserve, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be lifecycle, dispatch, observe, or error)", s)
	}
}

// ParseOperationFlag parses an operation string from command-line flag (case-insensitive).
func ParseOperationFlag(s string) (wire.Operation, error) {
	switch strings.ToLower(s) {
	case "read":
		return wire.OpRead, nil
	case "write":
		return wire.OpWrite, nil
	case "execute", "exec":
		return wire.OpExecute, nil
	case "observe":
		return wire.OpObserve, nil
	case "write-attributes", "attr":
		return wire.OpWriteAttributes, nil
	case "discover":
		return wire.OpDiscover, nil
	case "create":
		return wire.OpCreate, nil
	case "delete":
		return wire.OpDelete, nil
	default:
		return 0, fmt.Errorf("invalid operation: %s", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, log.Filter{
		Category:  filter.Category,
		URIPrefix: filter.URIPrefix,
	})
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		if filter.Operation != nil && (event.Dispatch == nil || event.Dispatch.Operation != *filter.Operation) {
			continue
		}

		formatEvent(output, event)
	}

	return nil
}

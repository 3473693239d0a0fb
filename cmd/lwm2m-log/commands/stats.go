package commands

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/lwm2m-agent/lwm2mcore/pkg/log"
	"github.com/lwm2m-agent/lwm2mcore/pkg/wire"
)

// topURIs is how many of the busiest URIs the stats command lists.
const topURIs = 5

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents       int
	EventsByCategory  map[log.Category]int
	EventsByOperation map[wire.Operation]*OperationStats
	EventsByStatus    map[wire.Status]int
	DispatchesByURI   map[string]int
	Registries        map[string]*RegistryStats
	Notifications     int
	FailedDispatches  int
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// OperationStats holds dispatch statistics for one operation.
type OperationStats struct {
	Count         int
	Failed        int
	TotalDuration time.Duration
	MaxDuration   time.Duration
}

// Average returns the mean processing time.
func (o *OperationStats) Average() time.Duration {
	if o.Count == 0 {
		return 0
	}
	return o.TotalDuration / time.Duration(o.Count)
}

// RegistryStats holds statistics for a single registry instance.
type RegistryStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Objects   int
}

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := collectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func collectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory:  make(map[log.Category]int),
		EventsByOperation: make(map[wire.Operation]*OperationStats),
		EventsByStatus:    make(map[wire.Status]int),
		DispatchesByURI:   make(map[string]int),
		Registries:        make(map[string]*RegistryStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++

		// Track time range
		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		reg, ok := stats.Registries[event.RegistryID]
		if !ok {
			reg = &RegistryStats{
				FirstSeen: event.Timestamp,
				LastSeen:  event.Timestamp,
			}
			stats.Registries[event.RegistryID] = reg
		}
		reg.Events++
		if event.Timestamp.After(reg.LastSeen) {
			reg.LastSeen = event.Timestamp
		}

		switch {
		case event.Lifecycle != nil:
			switch event.Lifecycle.Action {
			case log.ActionObjectAdded:
				reg.Objects++
			case log.ActionObjectRemoved:
				reg.Objects--
			case log.ActionTeardown:
				reg.Objects = 0
			}

		case event.Dispatch != nil:
			d := event.Dispatch
			op, ok := stats.EventsByOperation[d.Operation]
			if !ok {
				op = &OperationStats{}
				stats.EventsByOperation[d.Operation] = op
			}
			op.Count++
			op.TotalDuration += d.ProcessingTime
			op.MaxDuration = max(op.MaxDuration, d.ProcessingTime)
			if !d.Status.IsSuccess() {
				op.Failed++
				stats.FailedDispatches++
			}
			stats.EventsByStatus[d.Status]++
			if event.URI != "" {
				stats.DispatchesByURI[event.URI]++
			}

		case event.Observe != nil:
			if event.Observe.Action == log.ObserveNotified {
				stats.Notifications++
			}

		case event.Error != nil:
			stats.Errors++
		}
	}
	return stats, nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== LwM2M Registry Trace Statistics ===")
	fmt.Fprintln(w)

	// Time range
	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryLifecycle, log.CategoryDispatch, log.CategoryObserve, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.EventsByOperation) > 0 {
		fmt.Fprintln(w, "Dispatches by Operation:")
		ops := make([]wire.Operation, 0, len(stats.EventsByOperation))
		for op := range stats.EventsByOperation {
			ops = append(ops, op)
		}
		slices.Sort(ops)
		for _, op := range ops {
			s := stats.EventsByOperation[op]
			fmt.Fprintf(w, "  %-18s %d (failed %d, avg %s, max %s)\n",
				op.String()+":", s.Count, s.Failed, formatDuration(s.Average()), formatDuration(s.MaxDuration))
		}
		fmt.Fprintln(w)

		fmt.Fprintln(w, "Responses by Status:")
		codes := make([]wire.Status, 0, len(stats.EventsByStatus))
		for code := range stats.EventsByStatus {
			codes = append(codes, code)
		}
		slices.Sort(codes)
		for _, code := range codes {
			fmt.Fprintf(w, "  %-28s %d\n", code.String()+":", stats.EventsByStatus[code])
		}
		fmt.Fprintln(w)

		fmt.Fprintln(w, "Busiest URIs:")
		for _, u := range busiest(stats.DispatchesByURI, topURIs) {
			fmt.Fprintf(w, "  %-16s %d\n", u, stats.DispatchesByURI[u])
		}
		fmt.Fprintln(w)
	}

	if stats.Notifications > 0 {
		fmt.Fprintf(w, "Notifications: %d\n", stats.Notifications)
		fmt.Fprintln(w)
	}

	// Registries
	fmt.Fprintf(w, "Registries: %d\n", len(stats.Registries))
	if len(stats.Registries) > 0 {
		type regInfo struct {
			id    string
			stats *RegistryStats
		}
		regs := make([]regInfo, 0, len(stats.Registries))
		for id, rs := range stats.Registries {
			regs = append(regs, regInfo{id, rs})
		}
		slices.SortFunc(regs, func(a, b regInfo) int {
			return a.stats.FirstSeen.Compare(b.stats.FirstSeen)
		})

		fmt.Fprintln(w, "")
		for _, r := range regs {
			duration := r.stats.LastSeen.Sub(r.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s, %d objects\n",
				shortenID(r.id), r.stats.Events, duration, r.stats.Objects)
		}
	}

	if stats.FailedDispatches > 0 || stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Failed dispatches: %d\n", stats.FailedDispatches)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}

// busiest returns up to n keys with the highest counts, ties broken by key.
func busiest(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// Package log provides the registry event trace.
//
// This package defines the Logger interface and Event types for capturing
// what happens to the object registry: objects and resources coming and
// going, read/write/execute dispatch results, and observation activity.
// It is separate from operational logging (slog) - the trace is a complete
// machine-readable record for debugging and analysis.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	reg.SetEventLogger(log.NewSlogAdapter(slog.Default()))
//
//	// For production: write to binary file
//	fl, _ := log.NewFileLogger("/var/log/lwm2m/agent.rlog")
//	reg.SetEventLogger(fl)
//
//	// Both: use MultiLogger
//	reg.SetEventLogger(log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fl))
//
// # Event Types
//
//   - Lifecycle: object/resource registration, removal, teardown
//   - Dispatch: read, write, execute and write-attributes results
//   - Observe: observation start/cancel, notifications, cache updates
//   - Error: failures that have no request to report back to
//
// # File Format
//
// A trace file (.rlog) is a Header record, a CBOR array carrying a magic
// string, the format version and the creation time, followed by one
// CBOR map per Event. FileLogger appends only to files whose header
// matches. The lwm2m-log tool views and summarizes them.
package log

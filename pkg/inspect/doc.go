// Package inspect provides registry inspection utilities.
//
// The inspect package offers a unified interface for:
//   - Parsing LwM2M paths (e.g., "/3/0/9" or "device/0/batteryLevel")
//   - Resolving object and resource names to numeric IDs
//   - Converting between display strings and raw resource values
//   - Formatting the registry tree for display
//   - Dumping registry snapshots as CBOR
package inspect

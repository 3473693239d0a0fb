// Package wire holds the low-level value and encoding helpers shared by the
// object registry and its collaborators.
//
// # Numeric Values
//
// LwM2M carries integers as big-endian two's-complement values of 1, 2, 4
// or 8 bytes and floats as 4 or 8 byte IEEE 754 values. BytesToInt and
// BytesToFloat materialize those into native values; IntToBytes and
// FloatToBytes produce them.
//
// # CBOR
//
// Registry snapshots and event traces are encoded as CBOR (RFC 8949) with
// integer keys. Marshal and Unmarshal use deterministic encoding so that two
// identical snapshots produce identical bytes.
//
// # Status Codes
//
// Status mirrors the CoAP response codes an LwM2M client answers with
// (class.detail, e.g. 2.05 Content, 4.04 Not Found).
package wire

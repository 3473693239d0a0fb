package log

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// traceMagic opens every trace file.
const traceMagic = "lwm2m-trace"

// TraceVersion is the trace file format version written by FileLogger.
const TraceVersion = 1

var (
	// ErrNotTrace is returned for files that do not start with a trace header.
	ErrNotTrace = errors.New("not a registry trace file")

	// ErrTraceVersion is returned for trace files of an unknown format version.
	ErrTraceVersion = errors.New("unsupported trace format version")
)

// Header is the first record of a trace file. It is encoded as a CBOR array
// so it can never be mistaken for an Event, which is a map.
type Header struct {
	_       struct{} `cbor:",toarray"`
	Magic   string
	Version uint
	Created time.Time
}

var (
	traceEnc cbor.EncMode
	traceDec cbor.DecMode
)

func init() {
	var err error

	// RFC3339Nano keeps handler timings ordered below the microsecond.
	traceEnc, err = cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("trace: encoder mode: %v", err))
	}

	// The writer never emits indefinite lengths or duplicate keys, so a file
	// containing them was not written by FileLogger.
	traceDec, err = cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("trace: decoder mode: %v", err))
	}
}

// EncodeEvent encodes a single event record.
func EncodeEvent(event Event) ([]byte, error) {
	return traceEnc.Marshal(event)
}

// DecodeEvent decodes a single event record.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := traceDec.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// writeHeader writes a trace header stamped with now.
func writeHeader(enc *cbor.Encoder, now time.Time) error {
	return enc.Encode(Header{Magic: traceMagic, Version: TraceVersion, Created: now})
}

// readHeader consumes and checks the trace header. An empty stream yields
// io.EOF.
func readHeader(dec *cbor.Decoder) (Header, error) {
	var h Header
	if err := dec.Decode(&h); err != nil {
		if errors.Is(err, io.EOF) {
			return Header{}, io.EOF
		}
		return Header{}, fmt.Errorf("%w: %v", ErrNotTrace, err)
	}
	if h.Magic != traceMagic {
		return Header{}, fmt.Errorf("%w: magic %q", ErrNotTrace, h.Magic)
	}
	if h.Version != TraceVersion {
		return Header{}, fmt.Errorf("%w: %d", ErrTraceVersion, h.Version)
	}
	return h, nil
}

package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// MaxIntLength is the longest integer encoding on the wire.
const MaxIntLength = 8

// ErrInvalidLength is returned when a value has an unsupported byte length.
var ErrInvalidLength = errors.New("invalid value length")

// BytesToInt decodes a big-endian two's-complement integer of up to 8 bytes.
// Shorter inputs are sign-extended from the most significant bit of the
// first byte. An empty input decodes to 0.
func BytesToInt(b []byte) (int64, error) {
	if len(b) == 0 {
		return 0, nil
	}
	if len(b) > MaxIntLength {
		return 0, fmt.Errorf("%w: %d bytes for integer", ErrInvalidLength, len(b))
	}

	var v int64
	if b[0]&0x80 != 0 {
		v = -1
	}
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v, nil
}

// IntToBytes encodes v in the shortest of 1, 2, 4 or 8 bytes that holds it.
func IntToBytes(v int64) []byte {
	switch {
	case v >= math.MinInt8 && v <= math.MaxInt8:
		return []byte{byte(v)}
	case v >= math.MinInt16 && v <= math.MaxInt16:
		return binary.BigEndian.AppendUint16(nil, uint16(v))
	case v >= math.MinInt32 && v <= math.MaxInt32:
		return binary.BigEndian.AppendUint32(nil, uint32(v))
	default:
		return binary.BigEndian.AppendUint64(nil, uint64(v))
	}
}

// BytesToFloat decodes a 4 or 8 byte big-endian IEEE 754 value.
func BytesToFloat(b []byte) (float64, error) {
	switch len(b) {
	case 4:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(b))), nil
	case 8:
		return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
	default:
		return 0, fmt.Errorf("%w: %d bytes for float", ErrInvalidLength, len(b))
	}
}

// FloatToBytes encodes v as an 8 byte big-endian IEEE 754 value.
func FloatToBytes(v float64) []byte {
	return binary.BigEndian.AppendUint64(nil, math.Float64bits(v))
}

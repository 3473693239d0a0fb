package inspect

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lwm2m-agent/lwm2mcore/pkg/model"
	"github.com/lwm2m-agent/lwm2mcore/pkg/wire"
)

// ErrInvalidValue is returned when a display string cannot be converted to
// the resource's type.
var ErrInvalidValue = errors.New("invalid value")

// EncodeValue converts a display string to the raw big-endian value of a
// resource of type typ.
func EncodeValue(typ model.ResourceType, s string) ([]byte, error) {
	switch typ {
	case model.TypeNone:
		if s != "" {
			return nil, fmt.Errorf("%w: %s resources take no value", ErrInvalidValue, typ)
		}
		return nil, nil

	case model.TypeString, model.TypeCorelink:
		return []byte(s), nil

	case model.TypeInteger:
		v, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, s)
		}
		return wire.IntToBytes(v), nil

	case model.TypeUnsigned:
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an unsigned integer", ErrInvalidValue, s)
		}
		return uintToBytes(v), nil

	case model.TypeFloat:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, s)
		}
		return wire.FloatToBytes(v), nil

	case model.TypeBoolean:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, s)
		}
		if v {
			return []byte{1}, nil
		}
		return []byte{0}, nil

	case model.TypeTime:
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return wire.IntToBytes(t.Unix()), nil
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is neither RFC 3339 nor unix seconds", ErrInvalidValue, s)
		}
		return wire.IntToBytes(v), nil

	case model.TypeObjlink:
		oid, iid, ok := strings.Cut(s, ":")
		if !ok {
			return nil, fmt.Errorf("%w: object link must be \"object:instance\"", ErrInvalidValue)
		}
		o, err1 := parseUint16(oid)
		i, err2 := parseUint16(iid)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("%w: object link %q", ErrInvalidValue, s)
		}
		return binary.BigEndian.AppendUint16(binary.BigEndian.AppendUint16(nil, o), i), nil

	case model.TypeOpaque:
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			b, err := hex.DecodeString(s[2:])
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
			}
			return b, nil
		}
		return []byte(s), nil

	default:
		return nil, fmt.Errorf("%w: unknown type %s", ErrInvalidValue, typ)
	}
}

// DecodeValue converts a raw value of type typ to its display string.
// Values that do not decode are shown as hex.
func DecodeValue(typ model.ResourceType, raw []byte) string {
	if raw == nil {
		return "null"
	}

	switch typ {
	case model.TypeString, model.TypeCorelink:
		return strconv.Quote(string(raw))

	case model.TypeInteger:
		if v, err := wire.BytesToInt(raw); err == nil {
			return strconv.FormatInt(v, 10)
		}

	case model.TypeUnsigned:
		if len(raw) <= wire.MaxIntLength {
			var buf [8]byte
			copy(buf[8-len(raw):], raw)
			return strconv.FormatUint(binary.BigEndian.Uint64(buf[:]), 10)
		}

	case model.TypeFloat:
		if v, err := wire.BytesToFloat(raw); err == nil {
			return strconv.FormatFloat(v, 'g', -1, 64)
		}

	case model.TypeBoolean:
		if len(raw) == 1 {
			return strconv.FormatBool(raw[0] != 0)
		}

	case model.TypeTime:
		if v, err := wire.BytesToInt(raw); err == nil {
			return time.Unix(v, 0).UTC().Format(time.RFC3339)
		}

	case model.TypeObjlink:
		if len(raw) == 4 {
			return fmt.Sprintf("%d:%d", binary.BigEndian.Uint16(raw), binary.BigEndian.Uint16(raw[2:]))
		}
	}
	return fmt.Sprintf("0x%x", raw)
}

func uintToBytes(v uint64) []byte {
	switch {
	case v <= 0xFF:
		return []byte{byte(v)}
	case v <= 0xFFFF:
		return binary.BigEndian.AppendUint16(nil, uint16(v))
	case v <= 0xFFFFFFFF:
		return binary.BigEndian.AppendUint32(nil, uint32(v))
	default:
		return binary.BigEndian.AppendUint64(nil, v)
	}
}

package inspect

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lwm2m-agent/lwm2mcore/pkg/model"
)

// Path errors. All of them match model.ErrInvalidURI.
var (
	ErrEmptyPath     = fmt.Errorf("%w: empty path", model.ErrInvalidURI)
	ErrInvalidPath   = fmt.Errorf("%w: invalid path format", model.ErrInvalidURI)
	ErrInvalidNumber = fmt.Errorf("%w: invalid numeric value in path", model.ErrInvalidURI)
)

// ParseURI parses an LwM2M path into a URI.
//
// Supported formats:
//   - "/" - the root
//   - "/object/instance" - an object instance
//   - "/object/instance/resource" - a resource
//   - "/object/instance/resource/resourceInstance" - a resource instance
//   - "/object" - all instances of an object
//
// The leading slash is optional. Numbers can be decimal or hex (0x prefix).
// Object and resource components may be names, e.g. "device/0/batteryLevel".
func ParseURI(input string) (model.URI, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return model.URI{}, ErrEmptyPath
	}

	trimmed := strings.TrimPrefix(input, "/")
	if trimmed == "" {
		return model.URI{}, nil
	}
	if strings.HasSuffix(trimmed, "/") || strings.Contains(trimmed, "//") {
		return model.URI{}, fmt.Errorf("%w: %q", ErrInvalidPath, input)
	}

	parts := strings.Split(trimmed, "/")
	if len(parts) > 4 {
		return model.URI{}, fmt.Errorf("%w: %q has more than 4 components", ErrInvalidPath, input)
	}

	var u model.URI
	var err error

	if u.ObjectID, err = parseComponent(parts[0], ResolveObjectName); err != nil {
		return model.URI{}, fmt.Errorf("object: %w", err)
	}
	u.Depth = 1

	if len(parts) > 1 {
		if u.InstanceID, err = parseUint16(parts[1]); err != nil {
			return model.URI{}, fmt.Errorf("instance: %w", err)
		}
		u.Depth = 2
	}

	if len(parts) > 2 {
		oid := u.ObjectID
		resolve := func(name string) (uint16, bool) { return ResolveResourceName(oid, name) }
		if u.ResourceID, err = parseComponent(parts[2], resolve); err != nil {
			return model.URI{}, fmt.Errorf("resource: %w", err)
		}
		u.Depth = 3
	}

	if len(parts) > 3 {
		if u.ResourceInstanceID, err = parseUint16(parts[3]); err != nil {
			return model.URI{}, fmt.Errorf("resource instance: %w", err)
		}
		u.Depth = 4
	}

	return u, nil
}

// FormatURI returns uri with names where known, e.g. "/device/0/batteryLevel".
func FormatURI(uri model.URI) string {
	if uri.Depth <= 0 {
		return "/"
	}

	var sb strings.Builder
	sb.WriteString("/")
	if name := ObjectName(uri.ObjectID); name != "" {
		sb.WriteString(name)
	} else {
		sb.WriteString(strconv.Itoa(int(uri.ObjectID)))
	}
	if uri.Depth >= 2 {
		sb.WriteString("/")
		sb.WriteString(strconv.Itoa(int(uri.InstanceID)))
	}
	if uri.Depth >= 3 {
		sb.WriteString("/")
		if name := ResourceName(uri.ObjectID, uri.ResourceID); name != "" {
			sb.WriteString(name)
		} else {
			sb.WriteString(strconv.Itoa(int(uri.ResourceID)))
		}
	}
	if uri.Depth >= 4 {
		sb.WriteString("/")
		sb.WriteString(strconv.Itoa(int(uri.ResourceInstanceID)))
	}
	return sb.String()
}

// parseComponent parses a numeric ID or resolves a name.
func parseComponent(s string, resolve func(string) (uint16, bool)) (uint16, error) {
	id, err := parseUint16(s)
	if err == nil {
		return id, nil
	}
	if id, ok := resolve(s); ok {
		return id, nil
	}
	return 0, err
}

// parseUint16 parses a uint16 from decimal or hex string.
func parseUint16(s string) (uint16, error) {
	var v uint64
	var err error

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = strconv.ParseUint(s[2:], 16, 16)
	} else {
		v, err = strconv.ParseUint(s, 10, 16)
	}
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return 0, fmt.Errorf("%w: %s (%v)", ErrInvalidNumber, s, err)
	}
	return uint16(v), nil
}

package inspect

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lwm2m-agent/lwm2mcore/pkg/model"
	"github.com/lwm2m-agent/lwm2mcore/pkg/objdef"
	"github.com/lwm2m-agent/lwm2mcore/pkg/wire"
)

// Inspector provides inspection and mutation capabilities over a registry
// using display strings instead of raw values.
type Inspector struct {
	reg *model.Registry
}

// NewInspector creates a new Inspector for the given registry.
func NewInspector(reg *model.Registry) *Inspector {
	return &Inspector{reg: reg}
}

// Registry returns the underlying registry.
func (i *Inspector) Registry() *model.Registry {
	return i.reg
}

// Tree returns a snapshot of the registry.
func (i *Inspector) Tree() *model.RegistryInfo {
	return i.reg.Info()
}

// ReadValue reads the resource at uri and formats it for display, with its
// unit when the object definition declares one.
func (i *Inspector) ReadValue(ctx context.Context, uri model.URI) (string, error) {
	r, err := i.resource(uri)
	if err != nil {
		return "", err
	}
	raw, err := i.reg.Read(ctx, uri)
	if err != nil {
		return "", err
	}
	s := DecodeValue(r.Type(), raw)
	if unit := Unit(uri.ObjectID, uri.ResourceID); unit != "" {
		s += " " + unit
	}
	return s, nil
}

// WriteValue converts s to the resource's type and writes it.
func (i *Inspector) WriteValue(ctx context.Context, uri model.URI, s string) error {
	r, err := i.resource(uri)
	if err != nil {
		return err
	}
	raw, err := EncodeValue(r.Type(), s)
	if err != nil {
		return err
	}
	return i.reg.Write(ctx, uri, raw)
}

// Execute executes the resource at uri with optional string arguments.
func (i *Inspector) Execute(ctx context.Context, uri model.URI, args string) error {
	var raw []byte
	if args != "" {
		raw = []byte(args)
	}
	return i.reg.Execute(ctx, uri, raw)
}

// WriteAttributes applies a write-attributes query such as
// "pmin=10&pmax=60&gt=80". A name without a value clears that attribute.
func (i *Inspector) WriteAttributes(uri model.URI, query string) error {
	for _, param := range strings.Split(query, "&") {
		if param == "" {
			continue
		}
		name, value, hasValue := strings.Cut(param, "=")
		kind, err := model.ParseAttributeKind(name)
		if err != nil {
			return err
		}
		if !hasValue {
			if err := i.reg.ClearAttribute(uri, kind); err != nil {
				return err
			}
			continue
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", model.ErrInvalidAttribute, name, value)
		}
		if err := i.reg.SetAttribute(uri, kind, v); err != nil {
			return err
		}
	}
	return nil
}

// Dump writes the registry snapshot to w as CBOR.
func (i *Inspector) Dump(w io.Writer) error {
	return wire.NewEncoder(w).Encode(i.reg.Info())
}

// DumpDiagnostic returns the registry snapshot in CBOR diagnostic notation.
func (i *Inspector) DumpDiagnostic() (string, error) {
	data, err := wire.Marshal(i.reg.Info())
	if err != nil {
		return "", err
	}
	return wire.Diagnose(data)
}

func (i *Inspector) resource(uri model.URI) (*model.Resource, error) {
	if uri.Depth < 3 {
		return nil, fmt.Errorf("%w: %s does not address a resource", model.ErrInvalidURI, uri)
	}
	_, r, err := i.reg.Resolve(uri)
	return r, err
}

// Unit returns the unit of a resource from its object definition, or "".
func Unit(objectID, resourceID uint16) string {
	d, err := objdef.Load(objectID)
	if err != nil {
		return ""
	}
	if rd, ok := d.Resource(resourceID); ok {
		return rd.Units
	}
	return ""
}

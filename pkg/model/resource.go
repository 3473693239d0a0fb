package model

import (
	"bytes"
	"context"
	"fmt"

	"github.com/lwm2m-agent/lwm2mcore/pkg/dlist"
)

// Resource is one addressable leaf of an object: a value or an action.
type Resource struct {
	link dlist.Link[*Resource]

	id         uint16
	instanceID uint16
	typ        ResourceType
	multiple   bool

	attrs    AttributeSet
	handlers Handlers

	alloc BufferAllocator
	cache []byte
}

// NewResource creates a resource with empty attributes and an empty cache.
// Its cache is allocated from the Go heap.
func NewResource(id, instanceID uint16, typ ResourceType, multiple bool, h Handlers) *Resource {
	return newResource(id, instanceID, typ, multiple, h, HeapAllocator{})
}

func newResource(id, instanceID uint16, typ ResourceType, multiple bool, h Handlers, alloc BufferAllocator) *Resource {
	return &Resource{
		id:         id,
		instanceID: instanceID,
		typ:        typ,
		multiple:   multiple,
		handlers:   h.normalize(),
		alloc:      alloc,
	}
}

// DLink returns the embedded list link.
func (r *Resource) DLink() *dlist.Link[*Resource] { return &r.link }

// ID returns the resource ID.
func (r *Resource) ID() uint16 { return r.id }

// InstanceID returns the resource instance ID.
func (r *Resource) InstanceID() uint16 { return r.instanceID }

// Type returns the declared value type.
func (r *Resource) Type() ResourceType { return r.typ }

// Multiple reports whether the resource is multi-instance.
func (r *Resource) Multiple() bool { return r.multiple }

// Capabilities returns the operations the resource supports.
func (r *Resource) Capabilities() Capability { return r.handlers.Capabilities() }

// CanRead reports whether the resource has a Reader.
func (r *Resource) CanRead() bool { return r.handlers.Read != nil }

// CanWrite reports whether the resource has a Writer.
func (r *Resource) CanWrite() bool { return r.handlers.Write != nil }

// CanExecute reports whether the resource has an Executor.
func (r *Resource) CanExecute() bool { return r.handlers.Execute != nil }

// SetAttribute sets one observation attribute.
// Threshold attributes are refused on non-numeric resources.
func (r *Resource) SetAttribute(kind AttributeKind, value float64) error {
	if kind.IsThreshold() && !r.typ.IsNumeric() {
		return fmt.Errorf("%w: %s on %s resource %d", ErrInvalidAttribute, kind, r.typ, r.id)
	}
	return r.attrs.set(kind, value)
}

// ClearAttribute makes one observation attribute absent.
func (r *Resource) ClearAttribute(kind AttributeKind) error {
	return r.attrs.clear(kind)
}

// Attributes returns a copy of the attribute set.
func (r *Resource) Attributes() AttributeSet { return r.attrs.Clone() }

// UpdateCache replaces the cached last-notified value with a copy of raw and
// releases the previous buffer. An empty raw clears the cache. If the
// allocator fails the previous value is kept and ErrOutOfMemory is returned.
func (r *Resource) UpdateCache(raw []byte) error {
	if len(raw) == 0 {
		r.ClearCache()
		return nil
	}

	buf := r.alloc.Alloc(len(raw))
	if buf == nil {
		return fmt.Errorf("%w: cache of %d bytes for resource %d", ErrOutOfMemory, len(raw), r.id)
	}
	buf = buf[:len(raw)]
	copy(buf, raw)

	r.releaseCache()
	r.cache = buf
	return nil
}

// Cache returns a copy of the cached value, or nil when nothing is cached.
func (r *Resource) Cache() []byte {
	if len(r.cache) == 0 {
		return nil
	}
	return bytes.Clone(r.cache)
}

// CacheLen returns the size of the cached value.
func (r *Resource) CacheLen() int { return len(r.cache) }

// CacheEqual reports whether raw equals the cached value.
func (r *Resource) CacheEqual(raw []byte) bool { return bytes.Equal(r.cache, raw) }

// ClearCache releases the cached value.
func (r *Resource) ClearCache() { r.releaseCache() }

func (r *Resource) releaseCache() {
	if r.cache != nil {
		r.alloc.Release(r.cache)
		r.cache = nil
	}
}

// Read dispatches to the resource's Reader.
func (r *Resource) Read(ctx context.Context, uri URI) ([]byte, error) {
	if r.handlers.Read == nil {
		return nil, ErrOperationNotSupported
	}
	return r.handlers.Read.Read(ctx, uri)
}

// Write dispatches to the resource's Writer.
func (r *Resource) Write(ctx context.Context, uri URI, value []byte) error {
	if r.handlers.Write == nil {
		return ErrOperationNotSupported
	}
	return r.handlers.Write.Write(ctx, uri, value)
}

// Execute dispatches to the resource's Executor.
func (r *Resource) Execute(ctx context.Context, uri URI, args []byte) error {
	if r.handlers.Execute == nil {
		return ErrOperationNotSupported
	}
	return r.handlers.Execute.Execute(ctx, uri, args)
}

// Destroy releases the cache buffer. The resource must already be unlinked
// from its object.
func (r *Resource) Destroy() error {
	if r.link.Linked() {
		return fmt.Errorf("%w: resource %d/%d", ErrStillLinked, r.id, r.instanceID)
	}
	r.releaseCache()
	return nil
}

func (r *Resource) String() string {
	return fmt.Sprintf("resource %d/%d (%s)", r.id, r.instanceID, r.typ)
}

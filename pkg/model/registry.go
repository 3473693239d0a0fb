package model

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lwm2m-agent/lwm2mcore/pkg/dlist"
	"github.com/lwm2m-agent/lwm2mcore/pkg/log"
	"github.com/lwm2m-agent/lwm2mcore/pkg/wire"
)

// Registry is the ordered collection of object instances. It is created once
// at agent start and emptied only by Teardown.
type Registry struct {
	id      string
	objects dlist.List[*Object]
	alloc   BufferAllocator

	logger *slog.Logger
	events log.Logger
}

// NewRegistry creates an empty registry with a fresh instance ID.
func NewRegistry() *Registry {
	reg := &Registry{
		id:     uuid.New().String(),
		alloc:  HeapAllocator{},
		logger: slog.New(slog.DiscardHandler),
		events: log.NoopLogger{},
	}
	reg.objects.Init()
	return reg
}

// ID returns the registry instance ID stamped on trace events.
func (reg *Registry) ID() string { return reg.id }

// SetLogger sets the operational logger. Nil restores the discard logger.
func (reg *Registry) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	reg.logger = logger
}

// SetEventLogger sets the trace event logger. Nil disables tracing.
func (reg *Registry) SetEventLogger(logger log.Logger) {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	reg.events = logger
}

// SetAllocator sets the allocator used by resources created through
// NewResource. Nil restores the heap allocator.
func (reg *Registry) SetAllocator(alloc BufferAllocator) {
	if alloc == nil {
		alloc = HeapAllocator{}
	}
	reg.alloc = alloc
}

// NewResource creates a resource whose cache uses the registry's allocator.
func (reg *Registry) NewResource(id, instanceID uint16, typ ResourceType, multiple bool, h Handlers) *Resource {
	return newResource(id, instanceID, typ, multiple, h, reg.alloc)
}

// AddObject appends o. The registry is unchanged on error.
func (reg *Registry) AddObject(o *Object) error {
	if _, err := reg.FindObject(o.id, o.instanceID); err == nil {
		return fmt.Errorf("%w: %d/%d", ErrDuplicateObject, o.id, o.instanceID)
	}
	if err := reg.objects.InsertTail(o); err != nil {
		return err
	}
	reg.logger.Debug("object added", "uri", o.URI().String(), "resources", o.ResourceCount())
	reg.lifecycle(o.URI(), log.ActionObjectAdded)
	return nil
}

// FindObject returns the object instance with the given identity.
func (reg *Registry) FindObject(id, instanceID uint16) (*Object, error) {
	for o := reg.objects.First(); o != nil; o = reg.objects.Next(o) {
		if o.id == id && o.instanceID == instanceID {
			return o, nil
		}
	}
	return nil, fmt.Errorf("%w: object %d/%d", ErrNotFound, id, instanceID)
}

// RemoveObject unlinks and destroys the object instance with the given
// identity, together with its resources.
func (reg *Registry) RemoveObject(id, instanceID uint16) error {
	o, err := reg.FindObject(id, instanceID)
	if err != nil {
		return err
	}
	if err := reg.objects.Remove(o); err != nil {
		return err
	}
	if err := o.Destroy(); err != nil {
		return err
	}
	reg.logger.Debug("object removed", "uri", o.URI().String())
	reg.lifecycle(o.URI(), log.ActionObjectRemoved)
	return nil
}

// ObjectInstances returns every instance of object id in insertion order.
func (reg *Registry) ObjectInstances(id uint16) []*Object {
	var out []*Object
	for o := range reg.objects.All() {
		if o.id == id {
			out = append(out, o)
		}
	}
	return out
}

// Objects iterates the object instances in insertion order.
func (reg *Registry) Objects() iter.Seq[*Object] { return reg.objects.All() }

// ObjectCount returns the number of object instances.
func (reg *Registry) ObjectCount() int { return reg.objects.Len() }

// AddResource adds r to an object instance already in the registry.
func (reg *Registry) AddResource(objectID, instanceID uint16, r *Resource) error {
	o, err := reg.FindObject(objectID, instanceID)
	if err != nil {
		return err
	}
	if err := o.AddResource(r); err != nil {
		return err
	}
	reg.lifecycle(ResourceInstanceURI(objectID, instanceID, r.id, r.instanceID), log.ActionResourceAdded)
	return nil
}

// RemoveResource removes the resource addressed by uri.
func (reg *Registry) RemoveResource(uri URI) error {
	o, r, err := reg.resolveResource(uri)
	if err != nil {
		return err
	}
	if err := o.RemoveResource(r.id, r.instanceID); err != nil {
		return err
	}
	reg.lifecycle(uri, log.ActionResourceRemoved)
	return nil
}

// Resolve walks uri down the tree. A depth-2 URI yields the object and a nil
// resource; depth 3 addresses resource instance 0.
func (reg *Registry) Resolve(uri URI) (*Object, *Resource, error) {
	if uri.Depth < 2 || uri.Depth > 4 {
		return nil, nil, fmt.Errorf("%w: %s does not address an object instance", ErrInvalidURI, uri)
	}
	o, err := reg.FindObject(uri.ObjectID, uri.InstanceID)
	if err != nil {
		return nil, nil, err
	}
	if uri.Depth == 2 {
		return o, nil, nil
	}
	riid := uint16(0)
	if uri.Depth == 4 {
		riid = uri.ResourceInstanceID
	}
	r, err := o.FindResource(uri.ResourceID, riid)
	if err != nil {
		return o, nil, err
	}
	return o, r, nil
}

func (reg *Registry) resolveResource(uri URI) (*Object, *Resource, error) {
	if uri.Depth < 3 {
		return nil, nil, fmt.Errorf("%w: %s does not address a resource", ErrInvalidURI, uri)
	}
	return reg.Resolve(uri)
}

// Read resolves uri and dispatches to the resource's Reader.
func (reg *Registry) Read(ctx context.Context, uri URI) ([]byte, error) {
	start := time.Now()
	_, r, err := reg.resolveResource(uri)
	var value []byte
	if err == nil {
		value, err = r.Read(ctx, uri)
	}
	reg.dispatched(uri, wire.OpRead, len(value), err, time.Since(start))
	return value, err
}

// Write resolves uri and dispatches to the resource's Writer.
func (reg *Registry) Write(ctx context.Context, uri URI, value []byte) error {
	start := time.Now()
	_, r, err := reg.resolveResource(uri)
	if err == nil {
		err = r.Write(ctx, uri, value)
	}
	reg.dispatched(uri, wire.OpWrite, len(value), err, time.Since(start))
	return err
}

// Execute resolves uri and dispatches to the resource's Executor.
func (reg *Registry) Execute(ctx context.Context, uri URI, args []byte) error {
	start := time.Now()
	_, r, err := reg.resolveResource(uri)
	if err == nil {
		err = r.Execute(ctx, uri, args)
	}
	reg.dispatched(uri, wire.OpExecute, len(args), err, time.Since(start))
	return err
}

// SetAttribute writes one attribute on the object (depth 2) or resource
// (depth 3 or 4) addressed by uri.
func (reg *Registry) SetAttribute(uri URI, kind AttributeKind, value float64) error {
	o, r, err := reg.Resolve(uri)
	if err == nil {
		if r != nil {
			err = r.SetAttribute(kind, value)
		} else {
			err = o.SetAttribute(kind, value)
		}
	}
	reg.dispatched(uri, wire.OpWriteAttributes, 0, err, 0)
	return err
}

// ClearAttribute removes one attribute from the object or resource
// addressed by uri.
func (reg *Registry) ClearAttribute(uri URI, kind AttributeKind) error {
	o, r, err := reg.Resolve(uri)
	if err == nil {
		if r != nil {
			err = r.ClearAttribute(kind)
		} else {
			err = o.ClearAttribute(kind)
		}
	}
	reg.dispatched(uri, wire.OpWriteAttributes, 0, err, 0)
	return err
}

// Teardown destroys every object instance, head first, together with its
// resources and cached values. The registry is left empty and usable.
// Calling it on an empty registry does nothing.
func (reg *Registry) Teardown() {
	n := 0
	for o := reg.objects.RemoveHead(); o != nil; o = reg.objects.RemoveHead() {
		o.releaseResources()
		n++
	}
	if n == 0 {
		return
	}
	reg.logger.Debug("registry torn down", "objects", n)
	reg.events.Log(log.Event{
		Timestamp:  time.Now(),
		RegistryID: reg.id,
		Category:   log.CategoryLifecycle,
		Lifecycle:  &log.LifecycleEvent{Action: log.ActionTeardown, Count: n},
	})
}

func (reg *Registry) lifecycle(uri URI, action log.LifecycleAction) {
	reg.events.Log(log.Event{
		Timestamp:  time.Now(),
		RegistryID: reg.id,
		Category:   log.CategoryLifecycle,
		URI:        uri.String(),
		Lifecycle:  &log.LifecycleEvent{Action: action},
	})
}

func (reg *Registry) dispatched(uri URI, op wire.Operation, size int, err error, elapsed time.Duration) {
	status := StatusFor(op, err)
	ev := &log.DispatchEvent{
		Operation:      op,
		Status:         status,
		Size:           size,
		ProcessingTime: elapsed,
	}
	if err != nil {
		ev.Error = err.Error()
		reg.logger.Debug("dispatch failed", "op", op.String(), "uri", uri.String(), "status", status.String(), "error", err)
	}
	reg.events.Log(log.Event{
		Timestamp:  time.Now(),
		RegistryID: reg.id,
		Category:   log.CategoryDispatch,
		URI:        uri.String(),
		Dispatch:   ev,
	})
}

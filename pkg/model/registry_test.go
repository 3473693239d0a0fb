package model

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwm2m-agent/lwm2mcore/pkg/log"
	"github.com/lwm2m-agent/lwm2mcore/pkg/wire"
)

func TestRegistryUniqueObjects(t *testing.T) {
	reg := NewRegistry()
	rng := rand.New(rand.NewPCG(1, 2))

	for range 500 {
		id := uint16(rng.IntN(4))
		iid := uint16(rng.IntN(3))
		if rng.IntN(2) == 0 {
			err := reg.AddObject(NewObject(id, iid, true))
			if err != nil {
				require.ErrorIs(t, err, ErrDuplicateObject)
			}
		} else {
			err := reg.RemoveObject(id, iid)
			if err != nil {
				require.ErrorIs(t, err, ErrNotFound)
			}
		}

		seen := make(map[[2]uint16]bool)
		for o := range reg.Objects() {
			key := [2]uint16{o.ID(), o.InstanceID()}
			require.False(t, seen[key], "duplicate object %v", key)
			seen[key] = true
		}
		require.Equal(t, len(seen), reg.ObjectCount())
	}
}

func TestRegistryFindAndInstances(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.AddObject(NewObject(3, 0, false)))
	require.NoError(t, reg.AddObject(NewObject(9, 0, true)))
	require.NoError(t, reg.AddObject(NewObject(9, 1, true)))

	o, err := reg.FindObject(9, 1)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), o.InstanceID())

	_, err = reg.FindObject(9, 2)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Len(t, reg.ObjectInstances(9), 2)
	assert.Len(t, reg.ObjectInstances(5), 0)
}

func TestRegistryDeviceScenario(t *testing.T) {
	reg := NewRegistry()
	device := NewObject(3, 0, false)
	require.NoError(t, reg.AddObject(device))
	require.NoError(t, reg.AddResource(3, 0,
		reg.NewResource(9, 0, TypeInteger, false, Handlers{Read: constReader([]byte{87})})))

	r, err := device.FindResource(9, 0)
	require.NoError(t, err)
	require.NoError(t, r.SetAttribute(AttrMinPeriod, 10))
	require.NoError(t, r.SetAttribute(AttrMaxPeriod, 60))

	r, err = device.FindResource(9, 0)
	require.NoError(t, err)
	attrs := r.Attributes()
	require.NotNil(t, attrs.MinPeriod)
	assert.Equal(t, uint32(10), *attrs.MinPeriod)
	assert.Equal(t, []AttributeKind{AttrMinPeriod, AttrMaxPeriod}, attrs.Active())
	for _, k := range []AttributeKind{AttrGreaterThan, AttrLessThan, AttrStep, AttrCancel} {
		assert.False(t, attrs.Has(k), k.String())
	}
	assert.False(t, r.CanWrite())
}

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry()
	o := NewObject(3, 0, false)
	require.NoError(t, reg.AddObject(o))
	require.NoError(t, o.AddResource(NewResource(6, 0, TypeInteger, true, Handlers{})))
	require.NoError(t, o.AddResource(NewResource(6, 1, TypeInteger, true, Handlers{})))

	tests := []struct {
		name    string
		uri     URI
		wantIID int
		wantErr error
	}{
		{"object", ObjectURI(3, 0), -1, nil},
		{"resource", ResourceURI(3, 0, 6), 0, nil},
		{"resource instance", ResourceInstanceURI(3, 0, 6, 1), 1, nil},
		{"missing object", ObjectURI(4, 0), -1, ErrNotFound},
		{"missing resource", ResourceURI(3, 0, 7), -1, ErrNotFound},
		{"root", URI{}, -1, ErrInvalidURI},
		{"object id only", URI{ObjectID: 3, Depth: 1}, -1, ErrInvalidURI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotObj, gotRes, err := reg.Resolve(tt.uri)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, gotRes)
				return
			}
			require.NoError(t, err)
			assert.Same(t, o, gotObj)
			if tt.wantIID < 0 {
				assert.Nil(t, gotRes)
			} else {
				require.NotNil(t, gotRes)
				assert.Equal(t, uint16(tt.wantIID), gotRes.InstanceID())
			}
		})
	}
}

func TestRegistryDispatchEmitsEvents(t *testing.T) {
	ctx := context.Background()
	events := &recordingLogger{}
	reg := NewRegistry()
	reg.SetEventLogger(events)

	o := NewObject(3, 0, false)
	require.NoError(t, reg.AddObject(o))
	require.NoError(t, reg.AddResource(3, 0, NewResource(9, 0, TypeInteger, false,
		Handlers{Read: constReader([]byte{0x64})})))
	require.NoError(t, reg.AddResource(3, 0, NewResource(4, 0, TypeNone, false,
		Handlers{Execute: ExecuteFunc(func(context.Context, URI, []byte) error { return nil })})))

	value, err := reg.Read(ctx, ResourceURI(3, 0, 9))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x64}, value)

	require.NoError(t, reg.Execute(ctx, ResourceURI(3, 0, 4), nil))

	err = reg.Write(ctx, ResourceURI(3, 0, 9), []byte{1})
	assert.ErrorIs(t, err, ErrOperationNotSupported)

	_, err = reg.Read(ctx, ObjectURI(3, 0))
	assert.ErrorIs(t, err, ErrInvalidURI)

	lifecycle := events.byCategory(log.CategoryLifecycle)
	require.Len(t, lifecycle, 3)
	assert.Equal(t, log.ActionObjectAdded, lifecycle[0].Lifecycle.Action)
	assert.Equal(t, "/3/0/9/0", lifecycle[1].URI)

	dispatch := events.byCategory(log.CategoryDispatch)
	require.Len(t, dispatch, 4)
	assert.Equal(t, wire.StatusContent, dispatch[0].Dispatch.Status)
	assert.Equal(t, 1, dispatch[0].Dispatch.Size)
	assert.Equal(t, wire.StatusChanged, dispatch[1].Dispatch.Status)
	assert.Equal(t, wire.StatusMethodNotAllowed, dispatch[2].Dispatch.Status)
	assert.NotEmpty(t, dispatch[2].Dispatch.Error)
	assert.Equal(t, wire.StatusBadRequest, dispatch[3].Dispatch.Status)
	for _, e := range events.events {
		assert.Equal(t, reg.ID(), e.RegistryID)
	}
}

func TestRegistryHandlerErrorPassesThrough(t *testing.T) {
	handlerErr := errors.New("package integrity check failed")
	reg := NewRegistry()
	require.NoError(t, reg.AddObject(NewObject(5, 0, false)))
	require.NoError(t, reg.AddResource(5, 0, NewResource(0, 0, TypeOpaque, false,
		Handlers{Write: WriteFunc(func(context.Context, URI, []byte) error { return handlerErr })})))

	err := reg.Write(context.Background(), ResourceURI(5, 0, 0), []byte{0xDE, 0xAD})
	assert.Same(t, handlerErr, err)
}

func TestRegistryAttributesByURI(t *testing.T) {
	reg := NewRegistry()
	o := NewObject(3, 0, false)
	require.NoError(t, reg.AddObject(o))
	require.NoError(t, o.AddResource(NewResource(9, 0, TypeInteger, false, Handlers{})))

	require.NoError(t, reg.SetAttribute(ObjectURI(3, 0), AttrMaxPeriod, 120))
	require.NoError(t, reg.SetAttribute(ResourceURI(3, 0, 9), AttrStep, 5))
	assert.ErrorIs(t, reg.SetAttribute(ObjectURI(3, 0), AttrStep, 5), ErrInvalidAttribute)

	assert.Equal(t, "pmax=120", o.Attributes().String())
	r, _ := o.Resource(9)
	assert.Equal(t, "st=5", r.Attributes().String())

	require.NoError(t, reg.ClearAttribute(ResourceURI(3, 0, 9), AttrStep))
	assert.True(t, r.Attributes().IsEmpty())
}

func TestRegistryRemoveResource(t *testing.T) {
	alloc := &trackingAllocator{}
	reg := NewRegistry()
	reg.SetAllocator(alloc)

	require.NoError(t, reg.AddObject(NewObject(3, 0, false)))
	r := reg.NewResource(9, 0, TypeInteger, false, Handlers{})
	require.NoError(t, reg.AddResource(3, 0, r))
	require.NoError(t, r.UpdateCache([]byte{1}))

	require.NoError(t, reg.RemoveResource(ResourceURI(3, 0, 9)))
	assert.Equal(t, 0, alloc.outstanding)
	assert.ErrorIs(t, reg.RemoveResource(ResourceURI(3, 0, 9)), ErrNotFound)
	assert.ErrorIs(t, reg.AddResource(4, 0, r), ErrNotFound)
}

func TestRegistryTeardown(t *testing.T) {
	alloc := &trackingAllocator{}
	events := &recordingLogger{}
	reg := NewRegistry()
	reg.SetAllocator(alloc)
	reg.SetEventLogger(events)

	for oid := range uint16(5) {
		o := NewObject(oid, 0, false)
		require.NoError(t, reg.AddObject(o))
		for rid := range uint16(3) {
			r := reg.NewResource(rid, 0, TypeInteger, false, Handlers{})
			require.NoError(t, r.UpdateCache([]byte{byte(oid), byte(rid)}))
			require.NoError(t, r.UpdateCache([]byte{byte(rid)}))
			require.NoError(t, o.AddResource(r))
		}
	}
	require.Equal(t, 30, alloc.allocs)

	reg.Teardown()

	assert.Equal(t, 0, reg.ObjectCount())
	assert.Nil(t, reg.objects.First())
	assert.Nil(t, reg.objects.Last())
	assert.Equal(t, 0, alloc.outstanding, "teardown leaked cache buffers")

	last := events.events[len(events.events)-1]
	require.NotNil(t, last.Lifecycle)
	assert.Equal(t, log.ActionTeardown, last.Lifecycle.Action)
	assert.Equal(t, 5, last.Lifecycle.Count)

	n := len(events.events)
	reg.Teardown()
	assert.Equal(t, n, len(events.events), "second teardown is a no-op")

	// Still usable.
	require.NoError(t, reg.AddObject(NewObject(0, 0, false)))
	assert.Equal(t, 1, reg.ObjectCount())
}

func TestRegistryInfo(t *testing.T) {
	reg := NewRegistry()
	o := NewObject(3, 0, false)
	require.NoError(t, reg.AddObject(o))
	r := NewResource(9, 0, TypeInteger, false, Handlers{Read: constReader([]byte{1})})
	require.NoError(t, o.AddResource(r))
	require.NoError(t, r.SetAttribute(AttrMinPeriod, 10))
	require.NoError(t, r.UpdateCache([]byte{1, 2}))

	info := reg.Info()
	assert.Equal(t, reg.ID(), info.ID)
	require.Len(t, info.Objects, 1)
	require.Len(t, info.Objects[0].Resources, 1)

	ri := info.Objects[0].Resources[0]
	assert.Equal(t, TypeInteger, ri.Type)
	assert.Equal(t, CapRead, ri.Capabilities)
	assert.Equal(t, 2, ri.CacheSize)
	assert.Equal(t, uint32(10), *ri.Attributes.MinPeriod)

	data, err := wire.Marshal(info)
	require.NoError(t, err)
	var decoded RegistryInfo
	require.NoError(t, wire.Unmarshal(data, &decoded))
	assert.Equal(t, info.Objects[0].Resources[0].ID, decoded.Objects[0].Resources[0].ID)
}

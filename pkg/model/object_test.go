package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwm2m-agent/lwm2mcore/pkg/dlist"
)

func TestObjectAddFindRemove(t *testing.T) {
	o := NewObject(3, 0, false)

	r0 := NewResource(0, 0, TypeString, false, Handlers{})
	r9 := NewResource(9, 0, TypeInteger, false, Handlers{})
	require.NoError(t, o.AddResource(r0))
	require.NoError(t, o.AddResource(r9))
	assert.Equal(t, 2, o.ResourceCount())

	got, err := o.FindResource(9, 0)
	require.NoError(t, err)
	assert.Same(t, r9, got)

	got, err = o.Resource(0)
	require.NoError(t, err)
	assert.Same(t, r0, got)

	_, err = o.FindResource(9, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, o.RemoveResource(9, 0))
	assert.Equal(t, 1, o.ResourceCount())
	assert.ErrorIs(t, o.RemoveResource(9, 0), ErrNotFound)
}

func TestObjectDuplicateResource(t *testing.T) {
	o := NewObject(3, 0, false)
	require.NoError(t, o.AddResource(NewResource(9, 0, TypeInteger, false, Handlers{})))

	dup := NewResource(9, 0, TypeInteger, false, Handlers{})
	assert.ErrorIs(t, o.AddResource(dup), ErrDuplicateResource)
	assert.Equal(t, 1, o.ResourceCount())
	assert.False(t, dup.DLink().Linked(), "refused resource stays unlinked")
}

func TestObjectResourceLinkedElsewhere(t *testing.T) {
	a := NewObject(3, 0, false)
	b := NewObject(4, 0, false)
	r := NewResource(0, 0, TypeInteger, false, Handlers{})
	require.NoError(t, a.AddResource(r))

	assert.ErrorIs(t, b.AddResource(r), dlist.ErrAlreadyLinked)
	assert.Equal(t, 0, b.ResourceCount())
}

func TestObjectResourceInstances(t *testing.T) {
	o := NewObject(3, 0, false)
	for _, iid := range []uint16{0, 1, 2} {
		require.NoError(t, o.AddResource(NewResource(6, iid, TypeInteger, true, Handlers{})))
	}
	require.NoError(t, o.AddResource(NewResource(7, 0, TypeInteger, true, Handlers{})))

	instances := o.ResourceInstances(6)
	require.Len(t, instances, 3)
	for i, r := range instances {
		assert.Equal(t, uint16(i), r.InstanceID())
	}
	assert.Empty(t, o.ResourceInstances(8))
}

func TestObjectResourcesInInsertionOrder(t *testing.T) {
	o := NewObject(5, 0, false)
	ids := []uint16{3, 1, 2, 0}
	for _, id := range ids {
		require.NoError(t, o.AddResource(NewResource(id, 0, TypeInteger, false, Handlers{})))
	}

	var got []uint16
	for r := range o.Resources() {
		got = append(got, r.ID())
	}
	assert.Equal(t, ids, got)
}

func TestObjectAttributes(t *testing.T) {
	o := NewObject(3, 0, false)

	require.NoError(t, o.SetAttribute(AttrMinPeriod, 5))
	require.NoError(t, o.SetAttribute(AttrMaxPeriod, 300))
	require.NoError(t, o.SetAttribute(AttrCancel, 1))
	for _, k := range []AttributeKind{AttrGreaterThan, AttrLessThan, AttrStep} {
		assert.ErrorIs(t, o.SetAttribute(k, 1), ErrInvalidAttribute)
	}

	require.NoError(t, o.ClearAttribute(AttrCancel))
	assert.Equal(t, "pmin=5&pmax=300", o.Attributes().String())
}

func TestObjectDestroy(t *testing.T) {
	alloc := &trackingAllocator{}
	o := NewObject(3, 0, false)
	for id := range uint16(4) {
		r := newResource(id, 0, TypeInteger, false, Handlers{}, alloc)
		require.NoError(t, r.UpdateCache([]byte{byte(id + 1)}))
		require.NoError(t, o.AddResource(r))
	}

	require.NoError(t, o.Destroy())
	assert.Equal(t, 0, o.ResourceCount())
	assert.Equal(t, 0, alloc.outstanding)
}

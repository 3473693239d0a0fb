package model

import (
	"fmt"
	"iter"

	"github.com/lwm2m-agent/lwm2mcore/pkg/dlist"
)

// Object is an object instance: an ordered collection of resources.
type Object struct {
	link dlist.Link[*Object]

	id         uint16
	instanceID uint16
	multiple   bool

	attrs     AttributeSet
	resources dlist.List[*Resource]
}

// NewObject creates an object instance with no resources.
func NewObject(id, instanceID uint16, multiple bool) *Object {
	o := &Object{id: id, instanceID: instanceID, multiple: multiple}
	o.resources.Init()
	return o
}

// DLink returns the embedded list link.
func (o *Object) DLink() *dlist.Link[*Object] { return &o.link }

// ID returns the object ID.
func (o *Object) ID() uint16 { return o.id }

// InstanceID returns the object instance ID.
func (o *Object) InstanceID() uint16 { return o.instanceID }

// Multiple reports whether the object may have several instances.
func (o *Object) Multiple() bool { return o.multiple }

// URI returns the address of the object instance.
func (o *Object) URI() URI { return ObjectURI(o.id, o.instanceID) }

// AddResource appends r. The object is unchanged on error.
func (o *Object) AddResource(r *Resource) error {
	if _, err := o.FindResource(r.id, r.instanceID); err == nil {
		return fmt.Errorf("%w: %d/%d in object %d/%d",
			ErrDuplicateResource, r.id, r.instanceID, o.id, o.instanceID)
	}
	return o.resources.InsertTail(r)
}

// FindResource returns the resource with the given identity.
func (o *Object) FindResource(id, instanceID uint16) (*Resource, error) {
	for r := o.resources.First(); r != nil; r = o.resources.Next(r) {
		if r.id == id && r.instanceID == instanceID {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: resource %d/%d in object %d/%d",
		ErrNotFound, id, instanceID, o.id, o.instanceID)
}

// Resource returns instance 0 of resource id.
func (o *Object) Resource(id uint16) (*Resource, error) {
	return o.FindResource(id, 0)
}

// ResourceInstances returns every instance of resource id in insertion order.
func (o *Object) ResourceInstances(id uint16) []*Resource {
	var out []*Resource
	for r := range o.resources.All() {
		if r.id == id {
			out = append(out, r)
		}
	}
	return out
}

// RemoveResource unlinks and destroys the resource with the given identity.
func (o *Object) RemoveResource(id, instanceID uint16) error {
	r, err := o.FindResource(id, instanceID)
	if err != nil {
		return err
	}
	if err := o.resources.Remove(r); err != nil {
		return err
	}
	return r.Destroy()
}

// Resources iterates the resources in insertion order.
func (o *Object) Resources() iter.Seq[*Resource] { return o.resources.All() }

// ResourceCount returns the number of resources.
func (o *Object) ResourceCount() int { return o.resources.Len() }

// SetAttribute sets an object-level attribute. Objects have no value type,
// so only pmin, pmax and cancel are accepted.
func (o *Object) SetAttribute(kind AttributeKind, value float64) error {
	if kind.IsThreshold() {
		return fmt.Errorf("%w: %s on object %d", ErrInvalidAttribute, kind, o.id)
	}
	return o.attrs.set(kind, value)
}

// ClearAttribute makes an object-level attribute absent.
func (o *Object) ClearAttribute(kind AttributeKind) error {
	return o.attrs.clear(kind)
}

// Attributes returns a copy of the object-level attribute set.
func (o *Object) Attributes() AttributeSet { return o.attrs.Clone() }

// Destroy removes and destroys every resource. The object must already be
// unlinked from the registry.
func (o *Object) Destroy() error {
	if o.link.Linked() {
		return fmt.Errorf("%w: object %d/%d", ErrStillLinked, o.id, o.instanceID)
	}
	o.releaseResources()
	return nil
}

func (o *Object) releaseResources() {
	for r := o.resources.RemoveHead(); r != nil; r = o.resources.RemoveHead() {
		r.releaseCache()
	}
}

func (o *Object) String() string {
	return fmt.Sprintf("object %d/%d", o.id, o.instanceID)
}

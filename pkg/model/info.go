package model

// RegistryInfo is a snapshot of the registry tree.
type RegistryInfo struct {
	ID      string        `cbor:"1,keyasint"`
	Objects []*ObjectInfo `cbor:"2,keyasint"`
}

// ObjectInfo is a snapshot of one object instance.
type ObjectInfo struct {
	ID         uint16          `cbor:"1,keyasint"`
	InstanceID uint16          `cbor:"2,keyasint"`
	Multiple   bool            `cbor:"3,keyasint,omitempty"`
	Attributes AttributeSet    `cbor:"4,keyasint"`
	Resources  []*ResourceInfo `cbor:"5,keyasint"`
}

// ResourceInfo is a snapshot of one resource.
type ResourceInfo struct {
	ID           uint16       `cbor:"1,keyasint"`
	InstanceID   uint16       `cbor:"2,keyasint"`
	Type         ResourceType `cbor:"3,keyasint"`
	Multiple     bool         `cbor:"4,keyasint,omitempty"`
	Capabilities Capability   `cbor:"5,keyasint"`
	Attributes   AttributeSet `cbor:"6,keyasint"`
	CacheSize    int          `cbor:"7,keyasint,omitempty"`
}

// Info returns a snapshot of the resource.
func (r *Resource) Info() *ResourceInfo {
	return &ResourceInfo{
		ID:           r.id,
		InstanceID:   r.instanceID,
		Type:         r.typ,
		Multiple:     r.multiple,
		Capabilities: r.Capabilities(),
		Attributes:   r.attrs.Clone(),
		CacheSize:    len(r.cache),
	}
}

// Info returns a snapshot of the object and its resources.
func (o *Object) Info() *ObjectInfo {
	resources := make([]*ResourceInfo, 0, o.resources.Len())
	for r := range o.resources.All() {
		resources = append(resources, r.Info())
	}
	return &ObjectInfo{
		ID:         o.id,
		InstanceID: o.instanceID,
		Multiple:   o.multiple,
		Attributes: o.attrs.Clone(),
		Resources:  resources,
	}
}

// Info returns a snapshot of the whole tree.
func (reg *Registry) Info() *RegistryInfo {
	objects := make([]*ObjectInfo, 0, reg.objects.Len())
	for o := range reg.objects.All() {
		objects = append(objects, o.Info())
	}
	return &RegistryInfo{ID: reg.id, Objects: objects}
}

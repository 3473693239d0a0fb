package model

import (
	"strconv"
	"strings"
)

// URI addresses a node of the registry tree: /object/instance/resource/resource-instance.
// Depth is the number of significant components (0 addresses the root).
type URI struct {
	ObjectID           uint16
	InstanceID         uint16
	ResourceID         uint16
	ResourceInstanceID uint16
	Depth              int
}

// ObjectURI addresses an object instance.
func ObjectURI(objectID, instanceID uint16) URI {
	return URI{ObjectID: objectID, InstanceID: instanceID, Depth: 2}
}

// ResourceURI addresses a resource (instance 0 when it is multi-instance).
func ResourceURI(objectID, instanceID, resourceID uint16) URI {
	return URI{ObjectID: objectID, InstanceID: instanceID, ResourceID: resourceID, Depth: 3}
}

// ResourceInstanceURI addresses one instance of a multi-instance resource.
func ResourceInstanceURI(objectID, instanceID, resourceID, resourceInstanceID uint16) URI {
	return URI{
		ObjectID:           objectID,
		InstanceID:         instanceID,
		ResourceID:         resourceID,
		ResourceInstanceID: resourceInstanceID,
		Depth:              4,
	}
}

// Object returns the object instance part of u.
func (u URI) Object() URI {
	return ObjectURI(u.ObjectID, u.InstanceID)
}

// String returns the path form, e.g. "/3/0/9".
func (u URI) String() string {
	if u.Depth <= 0 {
		return "/"
	}
	parts := [4]uint16{u.ObjectID, u.InstanceID, u.ResourceID, u.ResourceInstanceID}
	var b strings.Builder
	for _, p := range parts[:min(u.Depth, 4)] {
		b.WriteByte('/')
		b.WriteString(strconv.FormatUint(uint64(p), 10))
	}
	return b.String()
}

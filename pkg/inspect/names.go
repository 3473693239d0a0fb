package inspect

import (
	"strings"

	"github.com/lwm2m-agent/lwm2mcore/pkg/lwm2m"
)

// Name tables for resolving human-readable names to IDs, keyed by lower-case name.
var (
	objectNames   = map[string]uint16{}
	resourceNames = map[uint16]map[string]uint16{}
)

func init() {
	for _, oid := range lwm2m.ObjectIDs() {
		objectNames[strings.ToLower(oid.String())] = uint16(oid)

		n := lwm2m.ResourceCount(oid)
		if n == 0 {
			continue
		}
		names := make(map[string]uint16, n)
		for rid := range uint16(n) {
			names[strings.ToLower(lwm2m.ResourceName(oid, rid))] = rid
		}
		resourceNames[uint16(oid)] = names
	}
}

// ResolveObjectName resolves an object name to its ID (case-insensitive).
func ResolveObjectName(name string) (uint16, bool) {
	id, ok := objectNames[strings.ToLower(name)]
	return id, ok
}

// ResolveResourceName resolves a resource name to its ID within an object (case-insensitive).
func ResolveResourceName(objectID uint16, name string) (uint16, bool) {
	if names, ok := resourceNames[objectID]; ok {
		id, ok := names[strings.ToLower(name)]
		return id, ok
	}
	return 0, false
}

// ObjectName returns the name of an object, or "" when unknown.
func ObjectName(objectID uint16) string {
	oid := lwm2m.ObjectID(objectID)
	if !oid.IsKnown() {
		return ""
	}
	return oid.String()
}

// ResourceName returns the name of a resource, or "" when unknown.
func ResourceName(objectID, resourceID uint16) string {
	return lwm2m.ResourceName(lwm2m.ObjectID(objectID), resourceID)
}

package model

// ResourceType is the declared value type of a resource.
type ResourceType uint8

const (
	TypeNone ResourceType = iota
	TypeString
	TypeInteger
	TypeUnsigned
	TypeFloat
	TypeBoolean
	TypeOpaque
	TypeTime
	TypeObjlink
	TypeCorelink
)

var resourceTypeNames = [...]string{
	"none", "string", "integer", "unsigned", "float",
	"boolean", "opaque", "time", "objlink", "corelink",
}

// String returns the type name.
func (t ResourceType) String() string {
	if int(t) < len(resourceTypeNames) {
		return resourceTypeNames[t]
	}
	return "unknown"
}

// IsNumeric reports whether threshold attributes (gt, lt, st) apply to the type.
func (t ResourceType) IsNumeric() bool {
	switch t {
	case TypeInteger, TypeUnsigned, TypeFloat, TypeTime:
		return true
	default:
		return false
	}
}

// ParseResourceType returns the type with the given name.
func ParseResourceType(name string) (ResourceType, bool) {
	for i, n := range resourceTypeNames {
		if n == name {
			return ResourceType(i), true
		}
	}
	return TypeNone, false
}

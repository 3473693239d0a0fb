package wire

// Operation identifies a management operation dispatched through the registry.
type Operation uint8

const (
	OpRead Operation = iota + 1
	OpWrite
	OpExecute
	OpObserve
	OpWriteAttributes
	OpDiscover
	OpCreate
	OpDelete
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OpRead:
		return "READ"
	case OpWrite:
		return "WRITE"
	case OpExecute:
		return "EXECUTE"
	case OpObserve:
		return "OBSERVE"
	case OpWriteAttributes:
		return "WRITE_ATTRIBUTES"
	case OpDiscover:
		return "DISCOVER"
	case OpCreate:
		return "CREATE"
	case OpDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

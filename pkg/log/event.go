package log

import (
	"time"

	"github.com/lwm2m-agent/lwm2mcore/pkg/wire"
)

// Event represents a registry trace event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// RegistryID identifies the registry instance (UUID).
	RegistryID string `cbor:"2,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// URI is the LwM2M path the event concerns, e.g. "/3/0/9".
	URI string `cbor:"4,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Lifecycle *LifecycleEvent `cbor:"10,keyasint,omitempty"`
	Dispatch  *DispatchEvent  `cbor:"11,keyasint,omitempty"`
	Observe   *ObserveEvent   `cbor:"12,keyasint,omitempty"`
	Error     *ErrorEventData `cbor:"13,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryLifecycle indicates a registration change.
	CategoryLifecycle Category = 0
	// CategoryDispatch indicates a read/write/execute dispatch.
	CategoryDispatch Category = 1
	// CategoryObserve indicates observation activity.
	CategoryObserve Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryLifecycle:
		return "LIFECYCLE"
	case CategoryDispatch:
		return "DISPATCH"
	case CategoryObserve:
		return "OBSERVE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LifecycleEvent captures a change to the registry tree.
type LifecycleEvent struct {
	// Action is what happened.
	Action LifecycleAction `cbor:"1,keyasint"`

	// Count is the number of objects released (teardown only).
	Count int `cbor:"2,keyasint,omitempty"`
}

// LifecycleAction identifies a registry tree change.
type LifecycleAction uint8

const (
	ActionObjectAdded LifecycleAction = iota
	ActionObjectRemoved
	ActionResourceAdded
	ActionResourceRemoved
	ActionTeardown
)

// String returns the action name.
func (a LifecycleAction) String() string {
	switch a {
	case ActionObjectAdded:
		return "OBJECT_ADDED"
	case ActionObjectRemoved:
		return "OBJECT_REMOVED"
	case ActionResourceAdded:
		return "RESOURCE_ADDED"
	case ActionResourceRemoved:
		return "RESOURCE_REMOVED"
	case ActionTeardown:
		return "TEARDOWN"
	default:
		return "UNKNOWN"
	}
}

// DispatchEvent captures one dispatched operation and its outcome.
type DispatchEvent struct {
	// Operation performed.
	Operation wire.Operation `cbor:"1,keyasint"`

	// Status is the response code the operation maps to.
	Status wire.Status `cbor:"2,keyasint"`

	// Size is the payload size in bytes (value read or written).
	Size int `cbor:"3,keyasint,omitempty"`

	// Error is the error text for failed operations.
	Error string `cbor:"4,keyasint,omitempty"`

	// ProcessingTime is the time spent in the handler.
	ProcessingTime time.Duration `cbor:"5,keyasint,omitempty"`
}

// ObserveEvent captures observation activity.
type ObserveEvent struct {
	// Action is what happened.
	Action ObserveAction `cbor:"1,keyasint"`

	// ObservationID identifies the observation (UUID).
	ObservationID string `cbor:"2,keyasint,omitempty"`

	// Reason explains why a notification was (or was not) sent.
	Reason string `cbor:"3,keyasint,omitempty"`

	// Size is the notified value size in bytes.
	Size int `cbor:"4,keyasint,omitempty"`
}

// ObserveAction identifies observation activity.
type ObserveAction uint8

const (
	ObserveStarted ObserveAction = iota
	ObserveNotified
	ObserveCancelled
)

// String returns the action name.
func (a ObserveAction) String() string {
	switch a {
	case ObserveStarted:
		return "STARTED"
	case ObserveNotified:
		return "NOTIFIED"
	case ObserveCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors that are not reported to a caller.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`
}

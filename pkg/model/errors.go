package model

import (
	"errors"

	"github.com/lwm2m-agent/lwm2mcore/pkg/wire"
)

// Registry errors.
var (
	ErrDuplicateObject       = errors.New("duplicate object")
	ErrDuplicateResource     = errors.New("duplicate resource")
	ErrNotFound              = errors.New("not found")
	ErrOperationNotSupported = errors.New("operation not supported")
	ErrInvalidAttribute      = errors.New("invalid attribute")
	ErrOutOfMemory           = errors.New("out of memory")
	ErrStillLinked           = errors.New("node still linked")
	ErrInvalidURI            = errors.New("invalid uri")
)

// StatusError is implemented by handler errors that choose their own
// response code.
type StatusError interface {
	error
	Status() wire.Status
}

// StatusFor maps the outcome of op to the response code a protocol layer
// should send.
func StatusFor(op wire.Operation, err error) wire.Status {
	if err == nil {
		switch op {
		case wire.OpRead, wire.OpObserve, wire.OpDiscover:
			return wire.StatusContent
		case wire.OpCreate:
			return wire.StatusCreated
		case wire.OpDelete:
			return wire.StatusDeleted
		default:
			return wire.StatusChanged
		}
	}

	var se StatusError
	if errors.As(err, &se) {
		return se.Status()
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return wire.StatusNotFound
	case errors.Is(err, ErrOperationNotSupported):
		return wire.StatusMethodNotAllowed
	case errors.Is(err, ErrInvalidAttribute),
		errors.Is(err, ErrInvalidURI),
		errors.Is(err, ErrDuplicateObject),
		errors.Is(err, ErrDuplicateResource),
		errors.Is(err, wire.ErrInvalidLength):
		return wire.StatusBadRequest
	case errors.Is(err, ErrOutOfMemory):
		return wire.StatusServiceUnavailable
	default:
		return wire.StatusInternalServerError
	}
}

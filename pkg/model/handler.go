package model

import "context"

// Reader produces the current value of a resource.
type Reader interface {
	Read(ctx context.Context, uri URI) ([]byte, error)
}

// Writer accepts a new value for a resource.
type Writer interface {
	Write(ctx context.Context, uri URI, value []byte) error
}

// Executor runs the action behind an executable resource.
type Executor interface {
	Execute(ctx context.Context, uri URI, args []byte) error
}

// ReadFunc adapts a function to the Reader interface.
type ReadFunc func(ctx context.Context, uri URI) ([]byte, error)

// Read calls f.
func (f ReadFunc) Read(ctx context.Context, uri URI) ([]byte, error) { return f(ctx, uri) }

// WriteFunc adapts a function to the Writer interface.
type WriteFunc func(ctx context.Context, uri URI, value []byte) error

// Write calls f.
func (f WriteFunc) Write(ctx context.Context, uri URI, value []byte) error {
	return f(ctx, uri, value)
}

// ExecuteFunc adapts a function to the Executor interface.
type ExecuteFunc func(ctx context.Context, uri URI, args []byte) error

// Execute calls f.
func (f ExecuteFunc) Execute(ctx context.Context, uri URI, args []byte) error {
	return f(ctx, uri, args)
}

// Handlers is the capability set of a resource. A nil field means the
// resource does not support that operation.
type Handlers struct {
	Read    Reader
	Write   Writer
	Execute Executor
}

// HandlersOf collects whichever of Reader, Writer and Executor v implements.
func HandlersOf(v any) Handlers {
	var h Handlers
	if r, ok := v.(Reader); ok {
		h.Read = r
	}
	if w, ok := v.(Writer); ok {
		h.Write = w
	}
	if e, ok := v.(Executor); ok {
		h.Execute = e
	}
	return h.normalize()
}

// normalize drops nil function adapters so presence means capability.
func (h Handlers) normalize() Handlers {
	if f, ok := h.Read.(ReadFunc); ok && f == nil {
		h.Read = nil
	}
	if f, ok := h.Write.(WriteFunc); ok && f == nil {
		h.Write = nil
	}
	if f, ok := h.Execute.(ExecuteFunc); ok && f == nil {
		h.Execute = nil
	}
	return h
}

// Capabilities returns the operations h supports.
func (h Handlers) Capabilities() Capability {
	var c Capability
	if h.Read != nil {
		c |= CapRead
	}
	if h.Write != nil {
		c |= CapWrite
	}
	if h.Execute != nil {
		c |= CapExecute
	}
	return c
}

// Capability flags for resources.
type Capability uint8

const (
	// CapRead allows reading the resource.
	CapRead Capability = 1 << iota

	// CapWrite allows writing the resource.
	CapWrite

	// CapExecute allows executing the resource.
	CapExecute
)

// CanRead returns true if reading is allowed.
func (c Capability) CanRead() bool { return c&CapRead != 0 }

// CanWrite returns true if writing is allowed.
func (c Capability) CanWrite() bool { return c&CapWrite != 0 }

// CanExecute returns true if executing is allowed.
func (c Capability) CanExecute() bool { return c&CapExecute != 0 }

// String returns the capability flags as a string.
func (c Capability) String() string {
	var s string
	if c.CanRead() {
		s += "R"
	}
	if c.CanWrite() {
		s += "W"
	}
	if c.CanExecute() {
		s += "E"
	}
	if s == "" {
		return "-"
	}
	return s
}

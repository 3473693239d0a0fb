package model

// BufferAllocator provides the memory behind cached resource values.
// Alloc returns nil when no memory is available.
type BufferAllocator interface {
	Alloc(n int) []byte
	Release(buf []byte)
}

// HeapAllocator allocates from the Go heap. Release is a no-op.
type HeapAllocator struct{}

// Alloc returns a new zeroed buffer of length n.
func (HeapAllocator) Alloc(n int) []byte { return make([]byte, n) }

// Release does nothing; the garbage collector reclaims the buffer.
func (HeapAllocator) Release([]byte) {}

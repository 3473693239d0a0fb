// Package model implements the LwM2M object/resource registry.
//
// # Tree
//
// The registry is a two-level tree built from intrusive lists:
//
//	Registry
//	├── Object 0/0 (Security)
//	│   ├── Resource 0/0
//	│   └── ...
//	├── Object 3/0 (Device)
//	│   ├── Resource 0/0 (Manufacturer)
//	│   ├── Resource 9/0 (Battery Level)
//	│   └── ...
//	└── ...
//
// Objects are keyed by (id, instance id) among their siblings, and so are the
// resources inside one object. A failed add leaves the tree unchanged.
//
// # Dispatch
//
// A resource carries up to three capabilities: Reader, Writer and Executor.
// A missing capability makes the matching dispatch fail with
// ErrOperationNotSupported. Errors returned by a handler are passed through
// unchanged.
//
// # Attributes
//
// Objects and resources carry an AttributeSet of six optional observation
// parameters (pmin, pmax, gt, lt, st, cancel). The registry only stores them;
// package observe evaluates them against the resource's cached value.
//
// # Ownership
//
// The cached value of a resource is allocated through a BufferAllocator and
// exclusively owned by the resource. It is copied in on UpdateCache and copied
// out by Cache. Registry.Teardown is the one path that releases every node and
// buffer.
//
// The registry does no locking. Callers that share it between goroutines must
// serialize access themselves.
package model

// Package objdef provides LwM2M object definitions: the resources an object
// declares, with their types, operations and multiplicity.
//
// Definitions for the managed objects are embedded as YAML and loaded on
// demand. Instantiate registers an object instance in a model.Registry,
// building one resource per declared resource and restricting each
// resource's handlers to the operations its definition allows.
package objdef

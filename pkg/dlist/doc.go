// Package dlist implements an intrusive doubly-linked list.
//
// The link fields live inside the element records, so inserting an element
// never allocates. An element type opts in by embedding a Link and exposing it:
//
//	type Resource struct {
//		link dlist.Link[*Resource]
//		...
//	}
//
//	func (r *Resource) DLink() *dlist.Link[*Resource] { return &r.link }
//
//	var resources dlist.List[*Resource]
//	resources.InsertTail(r)
//
// # Ownership Check
//
// Every linked element records the list that contains it. Remove refuses an
// element whose recorded owner is a different list (or no list at all), which
// catches cross-list corruption and double removal. Building with the
// dlist_debug tag turns that refusal into a panic.
//
// The list never owns element memory; it only touches links.
package dlist

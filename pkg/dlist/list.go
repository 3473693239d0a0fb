package dlist

import (
	"errors"
	"iter"
)

// List errors.
var (
	ErrNotMember     = errors.New("dlist: element is not a member of this list")
	ErrAlreadyLinked = errors.New("dlist: element is already linked")
)

// Element is implemented by pointer types that embed a Link.
type Element[E any] interface {
	comparable
	DLink() *Link[E]
}

// Link is the list entry embedded in an element.
// The zero value is an unlinked entry.
type Link[E any] struct {
	next, prev E
	owner      any // *List[E] while linked
}

// Linked reports whether the element is currently a member of some list.
func (k *Link[E]) Linked() bool {
	return k.owner != nil
}

// List is the head of an intrusive list. The zero value is an empty list.
type List[E Element[E]] struct {
	first, last E
	len         int
}

// Init empties the list head. Elements that were linked are not touched.
func (l *List[E]) Init() {
	var zero E
	l.first, l.last = zero, zero
	l.len = 0
}

// Len returns the number of elements.
func (l *List[E]) Len() int { return l.len }

// First returns the first element, or the zero value if the list is empty.
func (l *List[E]) First() E { return l.first }

// Last returns the last element, or the zero value if the list is empty.
func (l *List[E]) Last() E { return l.last }

// Next returns the element after e, or the zero value at the end.
func (l *List[E]) Next(e E) E { return e.DLink().next }

// Prev returns the element before e, or the zero value at the start.
func (l *List[E]) Prev(e E) E { return e.DLink().prev }

// Contains reports whether e is a member of this list.
func (l *List[E]) Contains(e E) bool {
	var zero E
	if e == zero {
		return false
	}
	return e.DLink().owner == any(l)
}

// InsertTail appends e to the list.
// Returns ErrAlreadyLinked if e is a member of any list.
func (l *List[E]) InsertTail(e E) error {
	k := e.DLink()
	if k.owner != nil {
		return ErrAlreadyLinked
	}

	var zero E
	k.owner = l
	k.next = zero
	k.prev = l.last
	if l.last != zero {
		l.last.DLink().next = e
	} else {
		l.first = e
	}
	l.last = e
	l.len++
	return nil
}

// Remove unlinks e from the list and clears its link.
// Returns ErrNotMember if e does not belong to this list.
func (l *List[E]) Remove(e E) error {
	if !l.Contains(e) {
		if debug {
			panic(ErrNotMember)
		}
		return ErrNotMember
	}

	var zero E
	k := e.DLink()
	if k.next != zero {
		k.next.DLink().prev = k.prev
	} else {
		l.last = k.prev
	}
	if k.prev != zero {
		k.prev.DLink().next = k.next
	} else {
		l.first = k.next
	}
	*k = Link[E]{}
	l.len--
	return nil
}

// RemoveHead unlinks and returns the first element.
// On an empty list it returns the zero value.
func (l *List[E]) RemoveHead() E {
	var zero E
	e := l.first
	if e == zero {
		return zero
	}

	k := e.DLink()
	l.first = k.next
	if l.first != zero {
		l.first.DLink().prev = zero
	} else {
		l.last = zero
	}
	*k = Link[E]{}
	l.len--
	return e
}

// All iterates the list front to back. The element being visited may be
// removed during iteration.
func (l *List[E]) All() iter.Seq[E] {
	return func(yield func(E) bool) {
		var zero E
		for e := l.first; e != zero; {
			next := e.DLink().next
			if !yield(e) {
				return
			}
			e = next
		}
	}
}

// Package sequence provides an insertion-ordered, duplicate-rejecting
// singly-linked collection.
//
// A Sequence behaves like an ordered set: Add appends a value at the tail
// only when no element already compares equal to it. Lookups are linear
// scans, which is the intended cost model for the small-to-medium datasets
// this module loads once and then queries.
package sequence

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// NotFound is returned by IndexOf when the value is absent.
const NotFound = -1

// Element is the constraint every value stored in a Sequence satisfies.
// Equal decides uniqueness and Compare defines the natural order used by Sort.
type Element[T any] interface {
	Equal(other T) bool
	Compare(other T) int
}

// node is one link of the chain. Each node is owned by its predecessor,
// the head is owned by the Sequence.
type node[T any] struct {
	value T
	next  *node[T]
}

// Sequence is a generic unique linked sequence. The zero value is an empty
// sequence ready to use.
type Sequence[T Element[T]] struct {
	head *node[T]
	tail *node[T]
	size int
}

// New creates an empty sequence.
func New[T Element[T]]() *Sequence[T] {
	return &Sequence[T]{}
}

// Of creates a sequence from values, dropping duplicates in order.
func Of[T Element[T]](values ...T) *Sequence[T] {
	s := New[T]()
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Len returns the number of elements.
func (s *Sequence[T]) Len() int {
	return s.size
}

// IsEmpty reports whether the sequence has no elements.
func (s *Sequence[T]) IsEmpty() bool {
	return s.size == 0
}

// Add appends v unless an equal element is already present.
// It reports whether v was added.
func (s *Sequence[T]) Add(v T) bool {
	if s.Contains(v) {
		return false
	}
	s.push(v)
	return true
}

// push appends v at the tail without the uniqueness scan.
func (s *Sequence[T]) push(v T) {
	n := &node[T]{value: v}
	if s.head == nil {
		s.head = n
	} else {
		s.tail.next = n
	}
	s.tail = n
	s.size++
}

// Remove unlinks the first element equal to v and reports whether one was found.
func (s *Sequence[T]) Remove(v T) bool {
	var prev *node[T]
	for cur := s.head; cur != nil; cur = cur.next {
		if !cur.value.Equal(v) {
			prev = cur
			continue
		}
		if prev == nil {
			s.head = cur.next
		} else {
			prev.next = cur.next
		}
		if s.tail == cur {
			s.tail = prev
		}
		s.size--
		return true
	}
	return false
}

// Contains reports whether an element equal to v is present.
func (s *Sequence[T]) Contains(v T) bool {
	return s.IndexOf(v) != NotFound
}

// IndexOf returns the position of the first element equal to v, or NotFound.
func (s *Sequence[T]) IndexOf(v T) int {
	i := 0
	for cur := s.head; cur != nil; cur = cur.next {
		if cur.value.Equal(v) {
			return i
		}
		i++
	}
	return NotFound
}

// Find returns the first element satisfying match.
func (s *Sequence[T]) Find(match func(T) bool) (T, bool) {
	for cur := s.head; cur != nil; cur = cur.next {
		if match(cur.value) {
			return cur.value, true
		}
	}
	var zero T
	return zero, false
}

// Get returns the element at position i by walking from the head.
func (s *Sequence[T]) Get(i int) (T, error) {
	var zero T
	if i < 0 || i >= s.size {
		return zero, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, i, s.size)
	}
	cur := s.head
	for range i {
		cur = cur.next
	}
	return cur.value, nil
}

// ToSlice copies the elements into a new slice in insertion order.
func (s *Sequence[T]) ToSlice() []T {
	out := make([]T, 0, s.size)
	for cur := s.head; cur != nil; cur = cur.next {
		out = append(out, cur.value)
	}
	return out
}

// Clear removes every element.
func (s *Sequence[T]) Clear() {
	s.head = nil
	s.tail = nil
	s.size = 0
}

// Sort reorders the elements by their natural order. Ties keep their
// relative insertion order.
func (s *Sequence[T]) Sort() {
	values := s.ToSlice()
	slices.SortStableFunc(values, func(a, b T) int {
		return a.Compare(b)
	})
	// Elements are already unique, so the chain is rebuilt without Add.
	s.Clear()
	for _, v := range values {
		s.push(v)
	}
}

// All returns an iterator over the elements in order, for use with range.
func (s *Sequence[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for cur := s.head; cur != nil; cur = cur.next {
			if !yield(cur.value) {
				return
			}
		}
	}
}

// Iterator returns a fresh forward cursor positioned before the first element.
func (s *Sequence[T]) Iterator() *Iterator[T] {
	return &Iterator[T]{next: s.head}
}

// Equal reports whether both sequences hold pairwise equal elements in the same order.
func (s *Sequence[T]) Equal(other *Sequence[T]) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil || s.size != other.size {
		return false
	}
	a, b := s.head, other.head
	for a != nil && b != nil {
		if !a.value.Equal(b.value) {
			return false
		}
		a, b = a.next, b.next
	}
	return true
}

// String renders the sequence as "[a, b, c]".
func (s *Sequence[T]) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for cur := s.head; cur != nil; cur = cur.next {
		if cur != s.head {
			sb.WriteString(", ")
		}
		fmt.Fprint(&sb, cur.value)
	}
	sb.WriteByte(']')
	return sb.String()
}

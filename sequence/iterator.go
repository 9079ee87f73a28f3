package sequence

// Iterator is a single-pass forward cursor over a Sequence.
// A Sequence hands out any number of independent iterators.
type Iterator[T any] struct {
	next *node[T]
}

// HasNext reports whether Next will return another element.
func (it *Iterator[T]) HasNext() bool {
	return it.next != nil
}

// Next returns the current element and advances. It fails with
// ErrEndOfSequence once the cursor has passed the last element.
func (it *Iterator[T]) Next() (T, error) {
	if it.next == nil {
		var zero T
		return zero, ErrEndOfSequence
	}
	v := it.next.value
	it.next = it.next.next
	return v, nil
}

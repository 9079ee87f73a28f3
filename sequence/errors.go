package sequence

import (
	"errors"
	"fmt"
)

var (
	// ErrBounds is the category of every positional or navigational failure.
	ErrBounds = errors.New("sequence: out of bounds")

	// ErrIndexOutOfRange is returned by Get for an index outside [0, Len).
	ErrIndexOutOfRange = fmt.Errorf("%w: index out of range", ErrBounds)

	// ErrEndOfSequence is returned by Iterator.Next after the last element.
	ErrEndOfSequence = fmt.Errorf("%w: end of sequence", ErrBounds)
)

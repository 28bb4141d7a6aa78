package todo

import (
	"errors"
	"fmt"
)

// ErrEmptyText rejects Add/Update calls whose text trims to nothing. This is
// the only error condition surfaced to the user flow.
var ErrEmptyText = errors.New("todo text is empty")

type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("todo not found: %s", e.ID)
}

type IndexError struct {
	Index int
	Len   int
}

func (e IndexError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Len)
}

package arena

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfMemory = errors.New("arena: out of memory")
	ErrInvalidFree = errors.New("arena: invalid free")
	ErrClosed      = errors.New("arena: closed")
)

// OutOfMemoryError reports a request the arena could not satisfy.
// Available is the largest contiguous free block at the time of the request.
type OutOfMemoryError struct {
	Requested int
	Available int
	Capacity  int
}

func (e *OutOfMemoryError) Error() string {
	return fmt.Sprintf("arena: out of memory: requested %d bytes, largest free block %d of %d",
		e.Requested, e.Available, e.Capacity)
}

func (e *OutOfMemoryError) Unwrap() error {
	return ErrOutOfMemory
}

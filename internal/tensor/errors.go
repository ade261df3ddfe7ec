package tensor

import (
	"errors"
	"fmt"
)

var ErrShape = errors.New("tensor: shape mismatch")

// ShapeError describes an operand whose shape does not fit an operation.
// A -1 in Want stands for any number of leading dimensions.
type ShapeError struct {
	Op   string
	Got  []int
	Want []int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("tensor: %s: shape mismatch: got %v, want %v", e.Op, e.Got, e.Want)
}

func (e *ShapeError) Unwrap() error {
	return ErrShape
}

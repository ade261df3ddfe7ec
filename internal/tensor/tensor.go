// Package tensor holds the dense float32 tensor type and the numeric
// kernels the forward pass is built from. It does not allocate tensor
// storage itself; callers supply the backing slices.
package tensor

import (
	"fmt"
	"math"
	"slices"
)

// Tensor is a shaped view over a contiguous float32 buffer.
// len(Data()) always equals the product of Shape().
type Tensor struct {
	shape []int
	data  []float32
}

// New wraps data with the given shape. Every dimension must be positive and
// the data length must match the shape's element count.
func New(shape []int, data []float32) (*Tensor, error) {
	n, err := Numel(shape)
	if err != nil {
		return nil, err
	}
	if len(data) != n {
		return nil, &ShapeError{Op: "new", Got: []int{len(data)}, Want: []int{n}}
	}
	return &Tensor{shape: slices.Clone(shape), data: data}, nil
}

// Numel returns the number of elements described by shape. It rejects empty
// shapes, non-positive dimensions and element counts that overflow int.
func Numel(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, fmt.Errorf("%w: empty shape", ErrShape)
	}
	n := 1
	for i, d := range shape {
		if d <= 0 {
			return 0, fmt.Errorf("%w: shape[%d] must be positive, got %d", ErrShape, i, d)
		}
		if n > math.MaxInt/d {
			return 0, fmt.Errorf("%w: shape %v overflows", ErrShape, shape)
		}
		n *= d
	}
	return n, nil
}

// Shape returns a copy of the tensor's shape.
func (t *Tensor) Shape() []int {
	return slices.Clone(t.shape)
}

// Dims returns the rank of the tensor.
func (t *Tensor) Dims() int {
	return len(t.shape)
}

// Dim returns the size of dimension i.
func (t *Tensor) Dim(i int) int {
	return t.shape[i]
}

// Len returns the number of elements.
func (t *Tensor) Len() int {
	return len(t.data)
}

// Data returns the backing buffer. Writes through it are visible to every
// view sharing the buffer.
func (t *Tensor) Data() []float32 {
	return t.data
}

// Reshape returns a view with a new shape over the same buffer.
func (t *Tensor) Reshape(shape ...int) (*Tensor, error) {
	n, err := Numel(shape)
	if err != nil {
		return nil, err
	}
	if n != len(t.data) {
		return nil, &ShapeError{Op: "reshape", Got: t.Shape(), Want: slices.Clone(shape)}
	}
	return &Tensor{shape: slices.Clone(shape), data: t.data}, nil
}

// Mat returns a matrix view of a rank-2 tensor.
func (t *Tensor) Mat() (Mat, error) {
	if len(t.shape) != 2 {
		return Mat{}, fmt.Errorf("%w: matrix view needs rank 2, got shape %v", ErrShape, t.shape)
	}
	return Mat{R: t.shape[0], C: t.shape[1], Stride: t.shape[1], Data: t.data}, nil
}

// Equal reports whether a and b have the same shape and bit-identical data.
func Equal(a, b *Tensor) bool {
	if !slices.Equal(a.shape, b.shape) {
		return false
	}
	for i := range a.data {
		if math.Float32bits(a.data[i]) != math.Float32bits(b.data[i]) {
			return false
		}
	}
	return true
}

// SplitBatch separates shape into leading batch dimensions and a trailing
// feature block whose flattened size is features. The batch prefix is the
// shortest prefix of length >= 1 that leaves exactly features elements. When
// no prefix does but the whole shape flattens to features, as for [features]
// or [8, 8] with 64 features, the input has no batch dimensions.
func SplitBatch(shape []int, features int) ([]int, error) {
	total, err := Numel(shape)
	if err != nil {
		return nil, err
	}
	tail := total
	for k := 0; k < len(shape)-1; k++ {
		tail /= shape[k]
		if tail == features {
			return slices.Clone(shape[:k+1]), nil
		}
	}
	if total == features {
		return []int{}, nil
	}
	return nil, &ShapeError{Op: "split batch", Got: slices.Clone(shape), Want: []int{-1, features}}
}

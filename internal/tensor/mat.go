package tensor

import (
	"math/rand/v2"
)

// Mat is a dense row-major matrix view of float32 values.
//
// R and C are the number of rows and columns. Stride is the number of
// elements between the starts of two consecutive rows; for the contiguous
// views produced by Tensor.Mat it equals C. Mat never owns its Data.
type Mat struct {
	R, C   int
	Stride int
	Data   []float32
}

// NewMatFromData wraps data as an r x c matrix.
// It panics if the data length does not match r*c.
func NewMatFromData(r, c int, data []float32) Mat {
	if r < 0 || c < 0 {
		panic("negative dimension for matrix")
	}
	if r*c != len(data) {
		panic("data length mismatch")
	}
	return Mat{R: r, C: c, Stride: c, Data: data}
}

// Row returns a view of the i-th row. Modifications to the returned slice
// update the matrix.
func (m *Mat) Row(i int) []float32 {
	if i < 0 || i >= m.R {
		panic("row index out of range")
	}
	start := i * m.Stride
	return m.Data[start : start+m.C]
}

// FillUniform fills dst with values drawn uniformly from [lo, hi) using rng.
// The sequence depends only on the generator state, so a generator reset to
// the same seed reproduces the same values bit for bit.
func FillUniform(dst []float32, rng *rand.Rand, lo, hi float32) {
	span := hi - lo
	for i := range dst {
		dst[i] = lo + rng.Float32()*span
	}
}

package tensor

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// Kernel computes the affine map of a linear layer:
//
//	dst[r] = x[r] · wᵀ + bias
//
// for every row r, where x is [rows, in], w is [out, in] and dst is
// [rows, out]. Callers check shapes with CheckLinear first; kernels panic on
// mismatched operands.
type Kernel interface {
	Name() string
	Linear(dst, x, w *Mat, bias []float32)
}

// CheckLinear validates the operand shapes for Kernel.Linear.
func CheckLinear(dst, x, w *Mat, bias []float32) error {
	if x.C != w.C {
		return &ShapeError{Op: "linear input", Got: []int{x.R, x.C}, Want: []int{x.R, w.C}}
	}
	if dst.R != x.R || dst.C != w.R {
		return &ShapeError{Op: "linear output", Got: []int{dst.R, dst.C}, Want: []int{x.R, w.R}}
	}
	if len(bias) != w.R {
		return &ShapeError{Op: "linear bias", Got: []int{len(bias)}, Want: []int{w.R}}
	}
	return nil
}

// ScalarKernel is a single-threaded row-by-row kernel. Each output element is
// one dot product between an input row and a weight row.
type ScalarKernel struct{}

func (ScalarKernel) Name() string { return "scalar" }

func (ScalarKernel) Linear(dst, x, w *Mat, bias []float32) {
	if err := CheckLinear(dst, x, w, bias); err != nil {
		panic(err)
	}
	for r := 0; r < x.R; r++ {
		xr := x.Row(r)
		out := dst.Row(r)
		for j := 0; j < w.R; j++ {
			out[j] = Dot(xr, w.Row(j)) + bias[j]
		}
	}
}

// BlasKernel delegates to gonum's float32 GEMM with the weight transposed in
// place, so W is never materialised as Wᵀ.
type BlasKernel struct{}

func (BlasKernel) Name() string { return "blas32" }

func (BlasKernel) Linear(dst, x, w *Mat, bias []float32) {
	if err := CheckLinear(dst, x, w, bias); err != nil {
		panic(err)
	}
	if dst.R == 0 || dst.C == 0 {
		return
	}
	BroadcastRows(dst, bias)
	blas32.Gemm(blas.NoTrans, blas.Trans, 1, general(x), general(w), 1, general(dst))
}

func general(m *Mat) blas32.General {
	return blas32.General{Rows: m.R, Cols: m.C, Stride: m.Stride, Data: m.Data}
}

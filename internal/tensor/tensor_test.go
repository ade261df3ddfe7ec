package tensor

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewValidatesShape(t *testing.T) {
	t.Parallel()
	if _, err := New([]int{2, 3}, make([]float32, 6)); err != nil {
		t.Fatalf("New: %v", err)
	}
	bad := []struct {
		shape []int
		n     int
	}{
		{nil, 0},
		{[]int{2, 0}, 0},
		{[]int{-1, 4}, 4},
		{[]int{2, 3}, 5},
	}
	for _, tc := range bad {
		if _, err := New(tc.shape, make([]float32, tc.n)); !errors.Is(err, ErrShape) {
			t.Errorf("New(%v, %d): expected ErrShape, got %v", tc.shape, tc.n, err)
		}
	}
}

func TestShapeIsCopied(t *testing.T) {
	t.Parallel()
	shape := []int{2, 2}
	x, err := New(shape, make([]float32, 4))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	shape[0] = 9
	got := x.Shape()
	got[1] = 7
	if diff := cmp.Diff([]int{2, 2}, x.Shape()); diff != "" {
		t.Fatalf("shape mutated (-want +got):\n%s", diff)
	}
}

func TestReshapeSharesData(t *testing.T) {
	t.Parallel()
	x, _ := New([]int{1, 8, 8}, make([]float32, 64))
	v, err := x.Reshape(1, 64)
	if err != nil {
		t.Fatalf("Reshape: %v", err)
	}
	v.Data()[10] = 3
	if x.Data()[10] != 3 {
		t.Fatal("reshape did not share the buffer")
	}
	if _, err := x.Reshape(3, 20); !errors.Is(err, ErrShape) {
		t.Fatalf("expected ErrShape, got %v", err)
	}
}

func TestMatView(t *testing.T) {
	t.Parallel()
	x, _ := New([]int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	m, err := x.Mat()
	if err != nil {
		t.Fatalf("Mat: %v", err)
	}
	if diff := cmp.Diff([]float32{4, 5, 6}, m.Row(1)); diff != "" {
		t.Fatalf("row 1 (-want +got):\n%s", diff)
	}
	y, _ := New([]int{6}, make([]float32, 6))
	if _, err := y.Mat(); !errors.Is(err, ErrShape) {
		t.Fatalf("expected ErrShape for rank-1 view, got %v", err)
	}
}

func TestSplitBatch(t *testing.T) {
	t.Parallel()
	tests := []struct {
		shape    []int
		features int
		want     []int
		ok       bool
	}{
		{[]int{1, 8, 8}, 64, []int{1}, true},
		{[]int{4, 64}, 64, []int{4}, true},
		{[]int{2, 3, 64}, 64, []int{2, 3}, true},
		{[]int{2, 3, 4, 4}, 16, []int{2, 3}, true},
		{[]int{64}, 64, []int{}, true},
		{[]int{8, 8}, 64, []int{}, true},
		{[]int{4, 4, 4}, 64, []int{}, true},
		{[]int{64, 1}, 64, []int{}, true},
		{[]int{4, 32}, 64, nil, false},
		{[]int{32}, 64, nil, false},
		{[]int{1, 8, 8}, 10, nil, false},
	}
	for _, tc := range tests {
		got, err := SplitBatch(tc.shape, tc.features)
		if !tc.ok {
			if !errors.Is(err, ErrShape) {
				t.Errorf("SplitBatch(%v, %d): expected ErrShape, got %v", tc.shape, tc.features, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("SplitBatch(%v, %d): %v", tc.shape, tc.features, err)
			continue
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("SplitBatch(%v, %d) (-want +got):\n%s", tc.shape, tc.features, diff)
		}
	}
}

func TestFillUniformDeterministic(t *testing.T) {
	t.Parallel()
	a := make([]float32, 256)
	b := make([]float32, 256)
	FillUniform(a, rand.New(rand.NewPCG(42, 42)), -0.5, 0.5)
	FillUniform(b, rand.New(rand.NewPCG(42, 42)), -0.5, 0.5)

	x, _ := New([]int{256}, a)
	y, _ := New([]int{256}, b)
	if !Equal(x, y) {
		t.Fatal("same seed produced different values")
	}
	for i, v := range a {
		if v < -0.5 || v >= 0.5 {
			t.Fatalf("value %d = %f outside [-0.5, 0.5)", i, v)
		}
	}
}

func TestActivations(t *testing.T) {
	t.Parallel()
	x := []float32{-2, -0.5, 0, 1.5}
	Identity.Apply(x)
	if diff := cmp.Diff([]float32{-2, -0.5, 0, 1.5}, x); diff != "" {
		t.Fatalf("identity changed values (-want +got):\n%s", diff)
	}
	ActReLU.Apply(x)
	if diff := cmp.Diff([]float32{0, 0, 0, 1.5}, x); diff != "" {
		t.Fatalf("relu (-want +got):\n%s", diff)
	}
	if ActReLU.String() != "relu" || Identity.String() != "identity" {
		t.Fatalf("unexpected names %q %q", ActReLU, Identity)
	}
}

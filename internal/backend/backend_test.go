package backend

import (
	"errors"
	"testing"

	"github.com/samcharles93/mlpbench/internal/arena"
	"github.com/samcharles93/mlpbench/internal/tensor"
)

func newTestDevice(t *testing.T, name string, capacity int) *Device {
	t.Helper()
	a, err := arena.New(capacity)
	if err != nil {
		t.Fatalf("arena.New: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	d, err := New(name, a)
	if err != nil {
		t.Fatalf("New(%q): %v", name, err)
	}
	return d
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"", Auto, true},
		{"auto", Auto, true},
		{" CPU ", CPU, true},
		{"blas", BLAS, true},
		{"cuda", "", false},
	}
	for _, tc := range tests {
		got, err := Normalize(tc.in)
		if tc.ok != (err == nil) || got != tc.want {
			t.Errorf("Normalize(%q) = %q, %v", tc.in, got, err)
		}
	}
}

func TestNewResolvesKernel(t *testing.T) {
	t.Parallel()
	if d := newTestDevice(t, Auto, 1024); d.Name() != CPU || d.Kernel().Name() != "scalar" {
		t.Fatalf("auto resolved to %s/%s", d.Name(), d.Kernel().Name())
	}
	if d := newTestDevice(t, BLAS, 1024); d.Name() != BLAS || d.Kernel().Name() != "blas32" {
		t.Fatalf("blas resolved to %s/%s", d.Name(), d.Kernel().Name())
	}
	if _, err := New(CPU, nil); err == nil {
		t.Fatal("expected error without arena")
	}
}

func TestSeedReproducesRandomTensors(t *testing.T) {
	t.Parallel()
	d := newTestDevice(t, CPU, 4096)

	d.Seed(42)
	a, err := d.Random(DefaultDistribution, 4, 16)
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	d.Seed(42)
	b, err := d.Random(DefaultDistribution, 4, 16)
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	if !tensor.Equal(a, b) {
		t.Fatal("reseeded device produced different values")
	}
	d.Seed(43)
	c, _ := d.Random(DefaultDistribution, 4, 16)
	if tensor.Equal(a, c) {
		t.Fatal("different seeds produced identical values")
	}
	if err := d.Free(a, b, c); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if got := d.Arena().Stats().InUse; got != 0 {
		t.Fatalf("in use after free = %d", got)
	}
}

func TestLinear(t *testing.T) {
	t.Parallel()
	for _, name := range []string{CPU, BLAS} {
		d := newTestDevice(t, name, 4096)
		x, _ := d.Zeros(2, 3)
		copy(x.Data(), []float32{1, 2, 3, -1, 0, 1})
		w, _ := d.Zeros(2, 3)
		copy(w.Data(), []float32{1, 0, 0, 0, 1, 1})
		b, _ := d.Zeros(2)
		copy(b.Data(), []float32{0.5, -1})

		y, err := d.Linear(x, w, b)
		if err != nil {
			t.Fatalf("%s: Linear: %v", name, err)
		}
		want := []float32{1.5, 4, -0.5, 0}
		for i, v := range y.Data() {
			if v != want[i] {
				t.Fatalf("%s: y[%d] = %f, want %f", name, i, v, want[i])
			}
		}

		bad, _ := d.Zeros(2, 4)
		if _, err := d.Linear(bad, w, b); !errors.Is(err, tensor.ErrShape) {
			t.Fatalf("%s: expected ErrShape, got %v", name, err)
		}
	}
}

func TestZerosOutOfMemory(t *testing.T) {
	t.Parallel()
	d := newTestDevice(t, CPU, 1024)
	if _, err := d.Zeros(64, 64); !errors.Is(err, arena.ErrOutOfMemory) {
		t.Fatalf("expected ErrOutOfMemory, got %v", err)
	}
}

func TestDescribeHost(t *testing.T) {
	t.Parallel()
	info := DescribeHost()
	if info.GoOS == "" || info.GoArch == "" || info.NumCPU < 1 {
		t.Fatalf("incomplete host info: %+v", info)
	}
	if info.Features == nil {
		t.Fatal("features must be non-nil")
	}
}

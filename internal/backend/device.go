package backend

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/samcharles93/mlpbench/internal/arena"
	"github.com/samcharles93/mlpbench/internal/tensor"
)

// seedStream is the second PCG word; only the seed is configurable.
const seedStream = 0x9e3779b97f4a7c15

// Distribution is a uniform range [Low, High).
type Distribution struct {
	Low, High float32
}

// DefaultDistribution is U[0, 1).
var DefaultDistribution = Distribution{Low: 0, High: 1}

// Device binds a kernel, a seeded generator and the arena every tensor is
// allocated from. A Device is used by one goroutine at a time.
type Device struct {
	name   string
	kernel tensor.Kernel
	arena  *arena.Arena
	rng    *rand.Rand
	seed   uint64
}

func (d *Device) Name() string { return d.name }

func (d *Device) Kernel() tensor.Kernel { return d.kernel }

func (d *Device) Arena() *arena.Arena { return d.arena }

// Seed resets the device generator. Every random tensor created afterwards
// is a pure function of seed and the sequence of requests.
func (d *Device) Seed(seed uint64) {
	d.seed = seed
	d.rng = rand.New(rand.NewPCG(seed, seed^seedStream))
}

// CurrentSeed returns the seed last passed to Seed.
func (d *Device) CurrentSeed() uint64 { return d.seed }

// Zeros allocates a zero-filled tensor from the arena.
func (d *Device) Zeros(shape ...int) (*tensor.Tensor, error) {
	n, err := tensor.Numel(shape)
	if err != nil {
		return nil, err
	}
	data, err := d.arena.AllocFloat32(n)
	if err != nil {
		return nil, err
	}
	return tensor.New(shape, data)
}

// Random allocates a tensor filled from dist.
func (d *Device) Random(dist Distribution, shape ...int) (*tensor.Tensor, error) {
	t, err := d.Zeros(shape...)
	if err != nil {
		return nil, err
	}
	tensor.FillUniform(t.Data(), d.rng, dist.Low, dist.High)
	return t, nil
}

// Free returns tensor storage to the arena. Nil entries are skipped. Views
// created by Reshape share storage with their source and must be freed once.
func (d *Device) Free(ts ...*tensor.Tensor) error {
	var errs []error
	for _, t := range ts {
		if t == nil {
			continue
		}
		if err := d.arena.FreeFloat32(t.Data()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Linear allocates y = x · wᵀ + b for x [rows, in], w [out, in], b [out].
func (d *Device) Linear(x, w, b *tensor.Tensor) (*tensor.Tensor, error) {
	xm, err := x.Mat()
	if err != nil {
		return nil, err
	}
	wm, err := w.Mat()
	if err != nil {
		return nil, err
	}
	if b.Dims() != 1 {
		return nil, fmt.Errorf("%w: bias must be rank 1, got shape %v", tensor.ErrShape, b.Shape())
	}
	probe := tensor.Mat{R: xm.R, C: wm.R, Stride: wm.R}
	if err := tensor.CheckLinear(&probe, &xm, &wm, b.Data()); err != nil {
		return nil, err
	}

	y, err := d.Zeros(xm.R, wm.R)
	if err != nil {
		return nil, err
	}
	ym, _ := y.Mat()
	d.kernel.Linear(&ym, &xm, &wm, b.Data())
	return y, nil
}

// Package model builds the fixed-topology MLP from a ModelConfig and runs
// inference over it.
package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/samcharles93/mlpbench/internal/arena"
	"github.com/samcharles93/mlpbench/internal/backend"
	"github.com/samcharles93/mlpbench/internal/tensor"
)

// Model is an immutable stack of layers whose parameters live in the
// device arena. It is not safe for concurrent use.
type Model struct {
	cfg      ModelConfig
	dev      *backend.Device
	layers   []Layer
	released bool
}

// Build validates cfg, reseeds dev with cfg.Seed and allocates every layer.
// Identical (cfg, backend) pairs produce bit-identical parameters. On failure
// nothing stays allocated.
func Build(cfg ModelConfig, dev *backend.Device) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dev == nil {
		return nil, errors.New("model: nil device")
	}
	if need, free := cfg.ParamBytes(), dev.Arena().Available(); need > free {
		return nil, &arena.OutOfMemoryError{
			Requested: need,
			Available: free,
			Capacity:  dev.Arena().Capacity(),
		}
	}

	dev.Seed(cfg.Seed)
	dims := cfg.LayerDims()
	m := &Model{cfg: cfg, dev: dev, layers: make([]Layer, 0, len(dims))}
	for i, d := range dims {
		l, err := newLayer(dev, d)
		if err != nil {
			m.free()
			return nil, fmt.Errorf("model: layer %d (%dx%d): %w", i, d.Out, d.In, err)
		}
		if i < len(dims)-1 {
			l.Role = RoleHidden
			l.Activation = tensor.ActReLU
			l.DropoutRate = cfg.Mlp.Dropout
		} else {
			l.Role = RoleOutput
			l.Activation = tensor.Identity
		}
		m.layers = append(m.layers, l)
	}
	if err := m.checkChain(); err != nil {
		m.free()
		return nil, err
	}
	return m, nil
}

func newLayer(dev *backend.Device, d Dims) (Layer, error) {
	bound := float32(1 / math.Sqrt(float64(d.In)))
	dist := backend.Distribution{Low: -bound, High: bound}
	w, err := dev.Random(dist, d.Out, d.In)
	if err != nil {
		return Layer{}, err
	}
	b, err := dev.Random(dist, d.Out)
	if err != nil {
		_ = dev.Free(w)
		return Layer{}, err
	}
	return Layer{Weight: w, Bias: b}, nil
}

func (m *Model) checkChain() error {
	n := len(m.layers)
	if n == 0 {
		return configErr("mlp.num_layers", "model has no layers")
	}
	if got := m.layers[0].InDim(); got != m.cfg.InputSize {
		return configErr("input_size", "first layer takes %d features, want %d", got, m.cfg.InputSize)
	}
	for i := 0; i+1 < n; i++ {
		if out, in := m.layers[i].OutDim(), m.layers[i+1].InDim(); out != in {
			return configErr("mlp.d_model", "layer %d emits %d features but layer %d takes %d", i, out, i+1, in)
		}
	}
	if got := m.layers[n-1].OutDim(); got != m.cfg.OutputSize {
		return configErr("output_size", "last layer emits %d features, want %d", got, m.cfg.OutputSize)
	}
	return nil
}

func (m *Model) Config() ModelConfig { return m.cfg }

func (m *Model) Device() *backend.Device { return m.dev }

// Layers returns the model's layers. Callers must not modify them.
func (m *Model) Layers() []Layer { return m.layers }

func (m *Model) NumLayers() int { return len(m.layers) }

func (m *Model) ParamCount() int {
	n := 0
	for i := range m.layers {
		n += m.layers[i].ParamCount()
	}
	return n
}

// Describe returns one LayerInfo per layer in order.
func (m *Model) Describe() []LayerInfo {
	out := make([]LayerInfo, len(m.layers))
	for i := range m.layers {
		out[i] = m.layers[i].info(i)
	}
	return out
}

// Release returns all parameters to the arena. The model is unusable after.
func (m *Model) Release() error {
	if m.released {
		return ErrReleased
	}
	err := m.free()
	m.released = true
	return err
}

func (m *Model) free() error {
	var errs []error
	for i := range m.layers {
		if err := m.dev.Free(m.layers[i].Weight, m.layers[i].Bias); err != nil {
			errs = append(errs, err)
		}
	}
	m.layers = nil
	return errors.Join(errs...)
}

package model

import (
	"errors"
	"math"

	"github.com/samcharles93/mlpbench/internal/arena"
)

// MaxLayers bounds NumLayers independently of arena capacity.
const MaxLayers = 1024

// MlpConfig describes the hidden stack.
type MlpConfig struct {
	NumLayers int     `yaml:"num_layers" json:"num_layers"`
	Dropout   float64 `yaml:"dropout" json:"dropout"`
	DModel    int     `yaml:"d_model" json:"d_model"`
}

// ModelConfig fully determines a model together with the device it is built on.
type ModelConfig struct {
	Seed       uint64    `yaml:"seed" json:"seed"`
	Mlp        MlpConfig `yaml:"mlp" json:"mlp"`
	InputSize  int       `yaml:"input_size" json:"input_size"`
	OutputSize int       `yaml:"output_size" json:"output_size"`
}

// DefaultConfig returns the configuration the benchmark ships with.
func DefaultConfig() ModelConfig {
	return ModelConfig{
		Seed: 42,
		Mlp: MlpConfig{
			NumLayers: 2,
			Dropout:   0.2,
			DModel:    64,
		},
		InputSize:  64,
		OutputSize: 10,
	}
}

// Validate reports every invalid field. It never adjusts the config.
func (c ModelConfig) Validate() error {
	var errs []error
	if c.Mlp.NumLayers < 0 {
		errs = append(errs, configErr("mlp.num_layers", "must be >= 0 (got %d)", c.Mlp.NumLayers))
	}
	if c.Mlp.NumLayers > MaxLayers {
		errs = append(errs, configErr("mlp.num_layers", "must be <= %d (got %d)", MaxLayers, c.Mlp.NumLayers))
	}
	if !(c.Mlp.Dropout >= 0 && c.Mlp.Dropout <= 1) {
		errs = append(errs, configErr("mlp.dropout", "must be in [0, 1] (got %v)", c.Mlp.Dropout))
	}
	if c.Mlp.DModel <= 0 {
		errs = append(errs, configErr("mlp.d_model", "must be > 0 (got %d)", c.Mlp.DModel))
	}
	if c.InputSize <= 0 {
		errs = append(errs, configErr("input_size", "must be > 0 (got %d)", c.InputSize))
	}
	if c.OutputSize <= 0 {
		errs = append(errs, configErr("output_size", "must be > 0 (got %d)", c.OutputSize))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	for _, d := range c.LayerDims() {
		if !fitsFloat32s(d.In, d.Out) {
			return configErr("mlp.d_model", "layer %dx%d is too large to address", d.Out, d.In)
		}
	}
	return nil
}

// Dims is the (in, out) pair of one linear layer.
type Dims struct {
	In, Out int
}

// LayerDims returns the shape of every layer in build order. There are
// NumLayers+1 layers: input -> d_model, NumLayers-1 x (d_model -> d_model),
// d_model -> output. With NumLayers == 0 the single layer maps input -> output.
func (c ModelConfig) LayerDims() []Dims {
	if c.Mlp.NumLayers <= 0 {
		return []Dims{{In: c.InputSize, Out: c.OutputSize}}
	}
	dims := make([]Dims, 0, c.Mlp.NumLayers+1)
	dims = append(dims, Dims{In: c.InputSize, Out: c.Mlp.DModel})
	for range c.Mlp.NumLayers - 1 {
		dims = append(dims, Dims{In: c.Mlp.DModel, Out: c.Mlp.DModel})
	}
	return append(dims, Dims{In: c.Mlp.DModel, Out: c.OutputSize})
}

// ParamCount returns the number of float32 weights and biases.
func (c ModelConfig) ParamCount() int {
	n := 0
	for _, d := range c.LayerDims() {
		n += d.Out*d.In + d.Out
	}
	return n
}

// ParamBytes returns the arena bytes the parameters occupy, including the
// per-buffer allocation rounding.
func (c ModelConfig) ParamBytes() int {
	n := 0
	for _, d := range c.LayerDims() {
		n += arena.RoundUp(d.Out*d.In*4) + arena.RoundUp(d.Out*4)
	}
	return n
}

func fitsFloat32s(in, out int) bool {
	if in > math.MaxInt/out {
		return false
	}
	return in*out <= (math.MaxInt-arena.Align)/4-out
}

package model

import (
	"fmt"

	"github.com/samcharles93/mlpbench/internal/backend"
	"github.com/samcharles93/mlpbench/internal/tensor"
)

type Role uint8

const (
	RoleHidden Role = iota
	RoleOutput
)

func (r Role) String() string {
	if r == RoleOutput {
		return "output"
	}
	return "hidden"
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	switch string(b) {
	case "hidden":
		*r = RoleHidden
	case "output":
		*r = RoleOutput
	default:
		return fmt.Errorf("model: unknown layer role %q", b)
	}
	return nil
}

// Layer is one affine map followed by dropout and an activation.
// Weight is [out, in] and Bias is [out]; both live in the device arena.
type Layer struct {
	Weight      *tensor.Tensor
	Bias        *tensor.Tensor
	DropoutRate float64
	Activation  tensor.Activation
	Role        Role
}

func (l *Layer) InDim() int  { return l.Weight.Dim(1) }
func (l *Layer) OutDim() int { return l.Weight.Dim(0) }

func (l *Layer) ParamCount() int {
	return l.Weight.Len() + l.Bias.Len()
}

// forward computes activation(dropout(x · Wᵀ + b)) into a fresh tensor.
func (l *Layer) forward(dev *backend.Device, x *tensor.Tensor) (*tensor.Tensor, error) {
	y, err := dev.Linear(x, l.Weight, l.Bias)
	if err != nil {
		return nil, err
	}
	l.dropout(y)
	l.Activation.Apply(y.Data())
	return y, nil
}

// dropout is the inference-mode policy: no mask is drawn and activations
// pass through unscaled. DropoutRate is kept only to describe the layer.
func (l *Layer) dropout(*tensor.Tensor) {}

// LayerInfo is a printable description of a layer.
type LayerInfo struct {
	Index      int               `json:"index"`
	Role       Role              `json:"role"`
	In         int               `json:"in"`
	Out        int               `json:"out"`
	Activation tensor.Activation `json:"activation"`
	Dropout    float64           `json:"dropout"`
	Params     int               `json:"params"`
}

func (l *Layer) info(i int) LayerInfo {
	return LayerInfo{
		Index:      i,
		Role:       l.Role,
		In:         l.InDim(),
		Out:        l.OutDim(),
		Activation: l.Activation,
		Dropout:    l.DropoutRate,
		Params:     l.ParamCount(),
	}
}

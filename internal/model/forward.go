package model

import (
	"errors"

	"github.com/samcharles93/mlpbench/internal/tensor"
)

// Forward runs input through every layer. Leading batch dimensions of input
// are carried to the output, whose last dimension is OutputSize; an input
// with no batch dimensions yields a rank-1 output. The input and the parameters are not
// modified. Intermediates are returned to the arena before Forward returns;
// the output is owned by the caller and released with Device().Free.
func (m *Model) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	if m.released {
		return nil, ErrReleased
	}
	if input == nil {
		return nil, errors.New("model: nil input")
	}
	batch, err := tensor.SplitBatch(input.Shape(), m.cfg.InputSize)
	if err != nil {
		return nil, err
	}
	rows := 1
	for _, d := range batch {
		rows *= d
	}

	x, err := input.Reshape(rows, m.cfg.InputSize)
	if err != nil {
		return nil, err
	}
	var owned *tensor.Tensor
	for i := range m.layers {
		y, err := m.layers[i].forward(m.dev, x)
		if err != nil {
			return nil, errors.Join(err, m.dev.Free(owned))
		}
		if err := m.dev.Free(owned); err != nil {
			return nil, errors.Join(err, m.dev.Free(y))
		}
		owned, x = y, y
	}

	out, err := owned.Reshape(append(batch, m.cfg.OutputSize)...)
	if err != nil {
		return nil, errors.Join(err, m.dev.Free(owned))
	}
	return out, nil
}

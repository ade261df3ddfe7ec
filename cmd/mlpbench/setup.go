package main

import (
	"errors"
	"fmt"
	"math"

	"github.com/samcharles93/mlpbench/internal/arena"
	"github.com/samcharles93/mlpbench/internal/backend"
	"github.com/samcharles93/mlpbench/internal/logger"
	"github.com/samcharles93/mlpbench/internal/model"
)

// modelConfig assembles a ModelConfig from the resolved flags.
func modelConfig() (model.ModelConfig, error) {
	if seed < 0 {
		return model.ModelConfig{}, fmt.Errorf("seed must be >= 0 (got %d)", seed)
	}
	for name, v := range map[string]int64{
		"num-layers":  numLayers,
		"d-model":     dModel,
		"input-size":  inputSize,
		"output-size": outputSize,
	} {
		if v > math.MaxInt32 || v < math.MinInt32 {
			return model.ModelConfig{}, fmt.Errorf("%s out of range: %d", name, v)
		}
	}
	return model.ModelConfig{
		Seed: uint64(seed),
		Mlp: model.MlpConfig{
			NumLayers: int(numLayers),
			Dropout:   dropout,
			DModel:    int(dModel),
		},
		InputSize:  int(inputSize),
		OutputSize: int(outputSize),
	}, nil
}

// session is the linear startup sequence: arena, device, model.
type session struct {
	arena *arena.Arena
	dev   *backend.Device
	model *model.Model
}

func openSession(log logger.Logger) (*session, error) {
	cfg, err := modelConfig()
	if err != nil {
		return nil, err
	}
	if arenaBytes <= 0 || arenaBytes > math.MaxInt32 {
		return nil, fmt.Errorf("arena must be in [1, %d] bytes (got %d)", math.MaxInt32, arenaBytes)
	}
	a, err := arena.New(int(arenaBytes))
	if err != nil {
		return nil, err
	}
	dev, err := backend.New(backendName, a)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	m, err := model.Build(cfg, dev)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("build model: %w", err)
	}
	st := a.Stats()
	log.Debug("model built",
		"backend", dev.Name(),
		"kernel", dev.Kernel().Name(),
		"layers", m.NumLayers(),
		"params", m.ParamCount(),
		"arena_in_use", st.InUse,
		"arena_capacity", st.Capacity,
		"mapped", st.Mapped,
	)
	return &session{arena: a, dev: dev, model: m}, nil
}

func (s *session) Close() error {
	return errors.Join(s.model.Release(), s.arena.Close())
}

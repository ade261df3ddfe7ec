package api

import (
	"errors"
	"slices"
	"sync"

	"github.com/samcharles93/mlpbench/internal/backend"
	"github.com/samcharles93/mlpbench/internal/bench"
	"github.com/samcharles93/mlpbench/internal/logger"
	"github.com/samcharles93/mlpbench/internal/model"
)

// MaxIterations caps a single request so one client cannot hold the model
// indefinitely.
const MaxIterations = 100_000

type ServiceConfig struct {
	Iterations int
	Warmup     int
	InputShape []int
	Clock      bench.Clock
	Log        logger.Logger
}

// BenchService owns the model and runs one benchmark at a time. Forward
// passes from different requests never overlap.
type BenchService struct {
	mu  sync.Mutex
	m   *model.Model
	cfg ServiceConfig
}

func NewBenchService(m *model.Model, cfg ServiceConfig) *BenchService {
	if cfg.Iterations <= 0 {
		cfg.Iterations = bench.DefaultIterations
	}
	if len(cfg.InputShape) == 0 {
		cfg.InputShape = []int{1, m.Config().InputSize}
	}
	if cfg.Log == nil {
		cfg.Log = logger.Discard()
	}
	return &BenchService{m: m, cfg: cfg}
}

// Describe reports the served model and current arena usage.
func (s *BenchService) Describe() ModelResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	dev := s.m.Device()
	return ModelResponse{
		Object:     "model",
		Backend:    dev.Name(),
		Kernel:     dev.Kernel().Name(),
		Config:     s.m.Config(),
		ParamCount: s.m.ParamCount(),
		Layers:     s.m.Describe(),
		Arena:      dev.Arena().Stats(),
	}
}

// Run allocates a synthetic input of the requested shape, benchmarks the
// model over it and frees it again.
func (s *BenchService) Run(req BenchmarkRequest) (rep *bench.Report, err error) {
	iterations := s.cfg.Iterations
	if req.Iterations != nil {
		iterations = *req.Iterations
	}
	if iterations <= 0 || iterations > MaxIterations {
		return nil, newInvalidRequest("iterations must be in [1, %d] (got %d)", MaxIterations, iterations)
	}
	warmup := s.cfg.Warmup
	if req.Warmup != nil {
		warmup = *req.Warmup
	}
	if warmup < 0 || warmup > MaxIterations {
		return nil, newInvalidRequest("warmup must be in [0, %d] (got %d)", MaxIterations, warmup)
	}
	shape := s.cfg.InputShape
	if len(req.InputShape) > 0 {
		shape = slices.Clone(req.InputShape)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dev := s.m.Device()
	input, err := dev.Random(backend.DefaultDistribution, shape...)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, dev.Free(input))
	}()

	r := bench.Runner{
		Model:  s.m,
		Clock:  s.cfg.Clock,
		Log:    s.cfg.Log,
		Warmup: warmup,
	}
	res, err := r.Run(input, iterations)
	if err != nil {
		return nil, err
	}
	return bench.NewReport(s.m, input, res), nil
}

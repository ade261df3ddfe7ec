package bench

import (
	"errors"
	"fmt"
	"time"

	"github.com/samcharles93/mlpbench/internal/logger"
	"github.com/samcharles93/mlpbench/internal/model"
	"github.com/samcharles93/mlpbench/internal/tensor"
)

const DefaultIterations = 30

// Runner drives a model through a fixed number of timed forward passes.
type Runner struct {
	Model *model.Model
	// Clock defaults to a MonotonicClock.
	Clock Clock
	// Log defaults to logger.Discard.
	Log logger.Logger
	// Warmup passes run before the measured loop and are not timed or logged.
	Warmup int
}

// Result is the outcome of one Run.
type Result struct {
	Warmup    int             `json:"warmup"`
	ElapsedMs []int64         `json:"elapsed_ms"`
	Samples   []time.Duration `json:"-"`
	Summary   Summary         `json:"summary"`
}

// Run times exactly iterations forward passes over input. Only the span
// between the two clock reads around Forward is measured; freeing the
// output and logging happen outside it. input is reused unmodified for
// every pass. The first forward error aborts the run and leaves the model
// usable.
func (r *Runner) Run(input *tensor.Tensor, iterations int) (*Result, error) {
	if iterations <= 0 {
		return nil, ErrNoIterations
	}
	if r.Model == nil {
		return nil, errors.New("bench: nil model")
	}
	if r.Warmup < 0 {
		return nil, fmt.Errorf("bench: warmup must be >= 0 (got %d)", r.Warmup)
	}
	clock := r.Clock
	if clock == nil {
		clock = NewMonotonicClock()
	}
	log := r.Log
	if log == nil {
		log = logger.Discard()
	}
	dev := r.Model.Device()

	for i := range r.Warmup {
		out, err := r.Model.Forward(input)
		if err != nil {
			return nil, fmt.Errorf("bench: warmup %d: %w", i, err)
		}
		if err := dev.Free(out); err != nil {
			return nil, fmt.Errorf("bench: warmup %d: %w", i, err)
		}
	}

	res := &Result{
		Warmup:    r.Warmup,
		ElapsedMs: make([]int64, 0, iterations),
		Samples:   make([]time.Duration, 0, iterations),
	}
	for i := range iterations {
		t0 := clock.Now()
		out, err := r.Model.Forward(input)
		t1 := clock.Now()
		if err != nil {
			return nil, fmt.Errorf("bench: iteration %d: %w", i, err)
		}
		if err := dev.Free(out); err != nil {
			return nil, fmt.Errorf("bench: iteration %d: %w", i, err)
		}

		d := t1.Sub(t0)
		ms := Millis(d)
		res.Samples = append(res.Samples, d)
		res.ElapsedMs = append(res.ElapsedMs, ms)
		log.Info(fmt.Sprintf("Time: %d ms", ms))
	}

	s, err := Summarize(res.ElapsedMs)
	if err != nil {
		return nil, err
	}
	res.Summary = s
	log.Info(s.Line())
	return res, nil
}

// Distribution returns the nanosecond latency distribution of the run.
func (r *Result) Distribution() Distribution {
	d, _ := Describe(r.Samples)
	return d
}

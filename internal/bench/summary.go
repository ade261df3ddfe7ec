package bench

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrNoIterations = errors.New("bench: iterations must be > 0")

// Summary holds the integer-millisecond aggregates of a run. FrequencyHz is
// only meaningful when FrequencyDefined is set; a sub-millisecond mean
// leaves it undefined.
type Summary struct {
	Iterations       int   `json:"iterations"`
	TotalMs          int64 `json:"total_ms"`
	MeanMs           int64 `json:"mean_ms"`
	FrequencyHz      int64 `json:"frequency_hz"`
	FrequencyDefined bool  `json:"frequency_defined"`
}

// Summarize computes total, floor(total/N) and floor(1000/mean).
func Summarize(elapsedMs []int64) (Summary, error) {
	if len(elapsedMs) == 0 {
		return Summary{}, ErrNoIterations
	}
	s := Summary{Iterations: len(elapsedMs)}
	for _, e := range elapsedMs {
		s.TotalMs += e
	}
	s.MeanMs = s.TotalMs / int64(len(elapsedMs))
	if s.MeanMs > 0 {
		s.FrequencyHz = 1000 / s.MeanMs
		s.FrequencyDefined = true
	}
	return s, nil
}

// Line renders the final log message.
func (s Summary) Line() string {
	if !s.FrequencyDefined {
		return fmt.Sprintf("Average time: %d ms, estimated frequency: undefined", s.MeanMs)
	}
	return fmt.Sprintf("Average time: %d ms, estimated frequency: %d Hz", s.MeanMs, s.FrequencyHz)
}

// Distribution describes per-iteration latency at nanosecond resolution.
type Distribution struct {
	MinNs       float64 `json:"min_ns"`
	MaxNs       float64 `json:"max_ns"`
	MeanNs      float64 `json:"mean_ns"`
	StdDevNs    float64 `json:"stddev_ns"`
	P50Ns       float64 `json:"p50_ns"`
	P95Ns       float64 `json:"p95_ns"`
	FrequencyHz float64 `json:"frequency_hz"`
}

// Describe computes the latency distribution of samples.
func Describe(samples []time.Duration) (Distribution, error) {
	if len(samples) == 0 {
		return Distribution{}, ErrNoIterations
	}
	ns := make([]float64, len(samples))
	for i, d := range samples {
		ns[i] = float64(d.Nanoseconds())
	}
	slices.Sort(ns)

	var d Distribution
	d.MinNs = floats.Min(ns)
	d.MaxNs = floats.Max(ns)
	if len(ns) > 1 {
		d.MeanNs, d.StdDevNs = stat.MeanStdDev(ns, nil)
	} else {
		d.MeanNs = ns[0]
	}
	d.P50Ns = stat.Quantile(0.5, stat.Empirical, ns, nil)
	d.P95Ns = stat.Quantile(0.95, stat.Empirical, ns, nil)
	if d.MeanNs > 0 {
		d.FrequencyHz = 1e9 / d.MeanNs
	}
	return d, nil
}

func (d Distribution) MeanMicros() float64 {
	return d.MeanNs / 1e3
}

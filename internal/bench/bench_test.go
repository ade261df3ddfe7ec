package bench

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/samcharles93/mlpbench/internal/arena"
	"github.com/samcharles93/mlpbench/internal/backend"
	"github.com/samcharles93/mlpbench/internal/logger"
	"github.com/samcharles93/mlpbench/internal/model"
	"github.com/samcharles93/mlpbench/internal/tensor"
)

// scriptClock advances by the next step on every second read, so each
// t0/t1 pair brackets exactly one scripted duration.
type scriptClock struct {
	now   Instant
	steps []time.Duration
	reads int
}

func (c *scriptClock) Now() Instant {
	if c.reads%2 == 1 {
		c.now += Instant(c.steps[c.reads/2])
	}
	c.reads++
	return c.now
}

func setup(t *testing.T, capacity int) (*model.Model, *tensor.Tensor) {
	t.Helper()
	a, err := arena.New(capacity)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = a.Close() })
	dev, err := backend.New(backend.CPU, a)
	if err != nil {
		t.Fatal(err)
	}
	m, err := model.Build(model.DefaultConfig(), dev)
	if err != nil {
		t.Fatal(err)
	}
	x, err := dev.Random(backend.DefaultDistribution, 1, 8, 8)
	if err != nil {
		t.Fatal(err)
	}
	return m, x
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		elapsed []int64
		want    Summary
	}{
		{"even", []int64{30, 30, 30}, Summary{Iterations: 3, TotalMs: 90, MeanMs: 30, FrequencyHz: 33, FrequencyDefined: true}},
		{"floors mean", []int64{1, 2}, Summary{Iterations: 2, TotalMs: 3, MeanMs: 1, FrequencyHz: 1000, FrequencyDefined: true}},
		{"floors frequency", []int64{7}, Summary{Iterations: 1, TotalMs: 7, MeanMs: 7, FrequencyHz: 142, FrequencyDefined: true}},
		{"sub millisecond", []int64{0, 1, 0}, Summary{Iterations: 3, TotalMs: 1, MeanMs: 0}},
	}
	for _, tc := range tests {
		got, err := Summarize(tc.elapsed)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("%s (-want +got):\n%s", tc.name, diff)
		}
	}
	if _, err := Summarize(nil); !errors.Is(err, ErrNoIterations) {
		t.Fatalf("expected ErrNoIterations, got %v", err)
	}
}

func TestSummaryLine(t *testing.T) {
	t.Parallel()
	if got := (Summary{MeanMs: 30, FrequencyHz: 33, FrequencyDefined: true}).Line(); got != "Average time: 30 ms, estimated frequency: 33 Hz" {
		t.Fatalf("Line = %q", got)
	}
	if got := (Summary{}).Line(); got != "Average time: 0 ms, estimated frequency: undefined" {
		t.Fatalf("Line = %q", got)
	}
}

func TestRunThirtyIterations(t *testing.T) {
	t.Parallel()
	m, x := setup(t, arena.DefaultCapacity)

	// 30 iterations summing to 900 ms with uneven spacing.
	steps := make([]time.Duration, 30)
	for i := range steps {
		steps[i] = time.Duration(20+(i%3)*10)*time.Millisecond + 400*time.Microsecond
	}
	var buf bytes.Buffer
	r := Runner{Model: m, Clock: &scriptClock{steps: steps}, Log: logger.Plain(&buf, slog.LevelInfo)}
	res, err := r.Run(x, DefaultIterations)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := Summary{Iterations: 30, TotalMs: 900, MeanMs: 30, FrequencyHz: 33, FrequencyDefined: true}
	if diff := cmp.Diff(want, res.Summary); diff != "" {
		t.Fatalf("summary (-want +got):\n%s", diff)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 31 {
		t.Fatalf("got %d log lines, want 31", len(lines))
	}
	for i, line := range lines[:30] {
		if want := fmt.Sprintf("INFO - Time: %d ms", 20+(i%3)*10); line != want {
			t.Fatalf("line %d = %q, want %q", i, line, want)
		}
	}
	if lines[30] != "INFO - Average time: 30 ms, estimated frequency: 33 Hz" {
		t.Fatalf("final line = %q", lines[30])
	}
}

func TestRunSubMillisecond(t *testing.T) {
	t.Parallel()
	m, x := setup(t, arena.DefaultCapacity)
	steps := []time.Duration{300 * time.Microsecond, 500 * time.Microsecond}
	var buf bytes.Buffer
	r := Runner{Model: m, Clock: &scriptClock{steps: steps}, Log: logger.Plain(&buf, slog.LevelInfo)}
	res, err := r.Run(x, 2)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Summary.FrequencyDefined || res.Summary.MeanMs != 0 {
		t.Fatalf("unexpected summary %+v", res.Summary)
	}
	if !strings.HasSuffix(strings.TrimSpace(buf.String()), "estimated frequency: undefined") {
		t.Fatalf("missing undefined frequency line:\n%s", buf.String())
	}
	d := res.Distribution()
	if d.MeanNs != 400e3 || d.FrequencyHz != 2500 {
		t.Fatalf("distribution = %+v", d)
	}
}

func TestRunReusesInputAndFreesOutputs(t *testing.T) {
	t.Parallel()
	m, x := setup(t, arena.DefaultCapacity)
	before := append([]float32{}, x.Data()...)
	inUse := m.Device().Arena().Stats().InUse

	r := Runner{Model: m, Warmup: 3}
	res, err := r.Run(x, 5)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.ElapsedMs) != 5 || len(res.Samples) != 5 {
		t.Fatalf("got %d samples, want 5", len(res.ElapsedMs))
	}
	if diff := cmp.Diff(before, x.Data()); diff != "" {
		t.Fatalf("input modified:\n%s", diff)
	}
	if got := m.Device().Arena().Stats().InUse; got != inUse {
		t.Fatalf("arena in use %d after run, want %d", got, inUse)
	}
}

func TestRunErrors(t *testing.T) {
	t.Parallel()
	m, x := setup(t, arena.DefaultCapacity)
	r := Runner{Model: m}
	if _, err := r.Run(x, 0); !errors.Is(err, ErrNoIterations) {
		t.Fatalf("expected ErrNoIterations, got %v", err)
	}

	bad, _ := m.Device().Zeros(1, 63)
	if _, err := r.Run(bad, 3); !errors.Is(err, model.ErrShape) {
		t.Fatalf("expected ErrShape, got %v", err)
	}
	// The model is still usable after an aborted run.
	if _, err := r.Run(x, 1); err != nil {
		t.Fatalf("Run after shape error: %v", err)
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()
	samples := []time.Duration{4 * time.Millisecond, 1 * time.Millisecond, 3 * time.Millisecond, 2 * time.Millisecond}
	d, err := Describe(samples)
	if err != nil {
		t.Fatal(err)
	}
	if d.MinNs != 1e6 || d.MaxNs != 4e6 || d.MeanNs != 2.5e6 {
		t.Fatalf("distribution = %+v", d)
	}
	if d.P50Ns != 2e6 || d.P95Ns != 4e6 {
		t.Fatalf("quantiles = %v / %v", d.P50Ns, d.P95Ns)
	}
	if d.MeanMicros() != 2500 {
		t.Fatalf("MeanMicros = %v", d.MeanMicros())
	}
	if _, err := Describe(nil); !errors.Is(err, ErrNoIterations) {
		t.Fatalf("expected ErrNoIterations, got %v", err)
	}
}

func TestReport(t *testing.T) {
	t.Parallel()
	m, x := setup(t, arena.DefaultCapacity)
	r := Runner{Model: m}
	res, err := r.Run(x, 3)
	if err != nil {
		t.Fatal(err)
	}
	rep := NewReport(m, x, res)
	if rep.ID == "" || rep.ParamCount != 8970 || rep.Backend != backend.CPU {
		t.Fatalf("unexpected report header %+v", rep)
	}

	var buf bytes.Buffer
	if err := rep.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != rep.ID || decoded.Summary != rep.Summary {
		t.Fatalf("decoded report differs: %+v", decoded)
	}
	if diff := cmp.Diff([]int{1, 8, 8}, decoded.InputShape); diff != "" {
		t.Fatalf("input shape (-want +got):\n%s", diff)
	}

	buf.Reset()
	if err := rep.WriteTable(&buf); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	for _, want := range []string{rep.ID, "8970", "[1 8 8]"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("table missing %q:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	WriteLayerTable(&buf, m.Describe())
	if !strings.Contains(buf.String(), "relu") || !strings.Contains(buf.String(), "output") {
		t.Fatalf("layer table:\n%s", buf.String())
	}
}

package api

import (
	"time"

	"github.com/samcharles93/mlpbench/internal/arena"
	"github.com/samcharles93/mlpbench/internal/bench"
	"github.com/samcharles93/mlpbench/internal/model"
)

// BenchmarkRequest is the body of POST /v1/benchmarks. Unset fields take
// the server defaults.
type BenchmarkRequest struct {
	Iterations *int  `json:"iterations,omitempty"`
	Warmup     *int  `json:"warmup,omitempty"`
	InputShape []int `json:"input_shape,omitempty"`
}

type ModelResponse struct {
	Object     string            `json:"object"`
	Backend    string            `json:"backend"`
	Kernel     string            `json:"kernel"`
	Config     model.ModelConfig `json:"config"`
	ParamCount int               `json:"param_count"`
	Layers     []model.LayerInfo `json:"layers"`
	Arena      arena.Stats       `json:"arena"`
}

// BenchmarkSummary is one entry of GET /v1/benchmarks.
type BenchmarkSummary struct {
	ID         string        `json:"id"`
	CreatedAt  time.Time     `json:"created_at"`
	Backend    string        `json:"backend"`
	InputShape []int         `json:"input_shape"`
	Summary    bench.Summary `json:"summary"`
}

type ListResponse struct {
	Object string             `json:"object"`
	Data   []BenchmarkSummary `json:"data"`
}

type ErrorResponse struct {
	Error ResponseError `json:"error"`
}

type ResponseError struct {
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
	Param   string `json:"param,omitempty"`
}

func summarize(r *bench.Report) BenchmarkSummary {
	return BenchmarkSummary{
		ID:         r.ID,
		CreatedAt:  r.CreatedAt,
		Backend:    r.Backend,
		InputShape: r.InputShape,
		Summary:    r.Summary,
	}
}

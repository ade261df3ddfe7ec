package bench

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"

	"github.com/samcharles93/mlpbench/internal/arena"
	"github.com/samcharles93/mlpbench/internal/backend"
	"github.com/samcharles93/mlpbench/internal/model"
	"github.com/samcharles93/mlpbench/internal/tensor"
	"github.com/samcharles93/mlpbench/internal/version"
)

// Report is the persisted record of one benchmark run.
type Report struct {
	ID           string            `json:"id"`
	CreatedAt    time.Time         `json:"created_at"`
	Version      string            `json:"version"`
	Backend      string            `json:"backend"`
	Kernel       string            `json:"kernel"`
	Host         backend.HostInfo  `json:"host"`
	Config       model.ModelConfig `json:"config"`
	InputShape   []int             `json:"input_shape"`
	OutputSize   int               `json:"output_size"`
	ParamCount   int               `json:"param_count"`
	Warmup       int               `json:"warmup"`
	ElapsedMs    []int64           `json:"elapsed_ms"`
	Summary      Summary           `json:"summary"`
	Distribution Distribution      `json:"distribution"`
	Arena        arena.Stats       `json:"arena"`
}

// NewReport snapshots the run together with the model and device it ran on.
func NewReport(m *model.Model, input *tensor.Tensor, res *Result) *Report {
	dev := m.Device()
	return &Report{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		Version:      version.String(),
		Backend:      dev.Name(),
		Kernel:       dev.Kernel().Name(),
		Host:         backend.DescribeHost(),
		Config:       m.Config(),
		InputShape:   input.Shape(),
		OutputSize:   m.Config().OutputSize,
		ParamCount:   m.ParamCount(),
		Warmup:       res.Warmup,
		ElapsedMs:    res.ElapsedMs,
		Summary:      res.Summary,
		Distribution: res.Distribution(),
		Arena:        dev.Arena().Stats(),
	}
}

func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteTable prints a human-readable summary.
func (r *Report) WriteTable(w io.Writer) error {
	freq := "undefined"
	if r.Summary.FrequencyDefined {
		freq = strconv.FormatInt(r.Summary.FrequencyHz, 10) + " Hz"
	}
	rows := [][]string{
		{"id", r.ID},
		{"backend", r.Backend + " (" + r.Kernel + ")"},
		{"cpu", r.Host.Brand},
		{"params", strconv.Itoa(r.ParamCount)},
		{"input", fmt.Sprint(r.InputShape)},
		{"iterations", strconv.Itoa(r.Summary.Iterations)},
		{"warmup", strconv.Itoa(r.Warmup)},
		{"total", fmt.Sprintf("%d ms", r.Summary.TotalMs)},
		{"mean", fmt.Sprintf("%d ms", r.Summary.MeanMs)},
		{"frequency", freq},
		{"mean (hi-res)", fmt.Sprintf("%.1f µs", r.Distribution.MeanMicros())},
		{"p50 / p95", fmt.Sprintf("%.1f / %.1f µs", r.Distribution.P50Ns/1e3, r.Distribution.P95Ns/1e3)},
		{"min / max", fmt.Sprintf("%.1f / %.1f µs", r.Distribution.MinNs/1e3, r.Distribution.MaxNs/1e3)},
		{"frequency (hi-res)", fmt.Sprintf("%.0f Hz", r.Distribution.FrequencyHz)},
		{"arena peak", fmt.Sprintf("%d / %d bytes", r.Arena.Peak, r.Arena.Capacity)},
	}

	table := tablewriter.NewWriter(w)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(rows)
	table.Render()
	return nil
}

// WriteLayerTable prints one row per model layer.
func WriteLayerTable(w io.Writer, layers []model.LayerInfo) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "ROLE", "IN", "OUT", "ACTIVATION", "DROPOUT", "PARAMS"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	for _, l := range layers {
		table.Append([]string{
			strconv.Itoa(l.Index),
			l.Role.String(),
			strconv.Itoa(l.In),
			strconv.Itoa(l.Out),
			l.Activation.String(),
			strconv.FormatFloat(l.Dropout, 'g', -1, 64),
			strconv.Itoa(l.Params),
		})
	}
	table.Render()
}

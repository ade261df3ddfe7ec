package backend

import (
	"fmt"
	"strings"

	"github.com/samcharles93/mlpbench/internal/arena"
	"github.com/samcharles93/mlpbench/internal/tensor"
)

const (
	CPU  = "cpu"
	BLAS = "blas"
	Auto = "auto"
)

func Normalize(name string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(name))
	if backend == "" {
		return Auto, nil
	}
	switch backend {
	case CPU, BLAS, Auto:
		return backend, nil
	default:
		return "", fmt.Errorf("unknown backend %q (expected auto, cpu, or blas)", backend)
	}
}

// Available returns a comma-separated list of selectable backends.
func Available() string {
	return strings.Join([]string{CPU, BLAS}, ",")
}

// New returns a device that draws all tensor storage from a. Auto resolves
// to the single-threaded cpu kernel.
func New(name string, a *arena.Arena) (*Device, error) {
	if a == nil {
		return nil, fmt.Errorf("backend: arena is required")
	}
	resolved, err := Normalize(name)
	if err != nil {
		return nil, err
	}
	var kernel tensor.Kernel
	switch resolved {
	case BLAS:
		kernel = tensor.BlasKernel{}
	default:
		resolved = CPU
		kernel = tensor.ScalarKernel{}
	}
	d := &Device{
		name:   resolved,
		kernel: kernel,
		arena:  a,
	}
	d.Seed(0)
	return d, nil
}

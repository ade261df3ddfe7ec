package model

import (
	"errors"
	"fmt"

	"github.com/samcharles93/mlpbench/internal/tensor"
)

var (
	ErrConfig   = errors.New("model: invalid config")
	ErrReleased = errors.New("model: released")

	// ErrShape matches forward-pass input shape errors.
	ErrShape = tensor.ErrShape
)

// ConfigError names the offending field of a rejected configuration.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("model: invalid config: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

func configErr(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

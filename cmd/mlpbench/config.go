package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the mlpbench configuration file
// (~/.config/mlpbench/config.yaml). Pointer fields distinguish "not set"
// from zero values.
type Config struct {
	Backend    string `yaml:"backend"`
	ArenaBytes *int64 `yaml:"arena_bytes"`

	// Model
	Seed       *int64   `yaml:"seed"`
	NumLayers  *int64   `yaml:"num_layers"`
	Dropout    *float64 `yaml:"dropout"`
	DModel     *int64   `yaml:"d_model"`
	InputSize  *int64   `yaml:"input_size"`
	OutputSize *int64   `yaml:"output_size"`

	// Benchmark
	InputShape []int  `yaml:"input_shape"`
	Iterations *int64 `yaml:"iterations"`
	Warmup     *int64 `yaml:"warmup"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mlpbench", "config.yaml")
}

// LoadConfig reads path, or the default location when path is empty. A
// missing default file yields a zero Config; a missing explicit file or a
// malformed one is an error.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = configPath()
		if path == "" {
			return Config{}, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyLogConfig applies config file defaults to the root logging flags.
func applyLogConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyModelConfig applies config file defaults to the model flags when the
// corresponding CLI flag was not explicitly set.
func applyModelConfig(c *cli.Command, cfg Config) {
	if cfg.Backend != "" && !c.IsSet("backend") {
		backendName = cfg.Backend
	}
	if cfg.ArenaBytes != nil && !c.IsSet("arena") {
		arenaBytes = *cfg.ArenaBytes
	}
	if cfg.Seed != nil && !c.IsSet("seed") {
		seed = *cfg.Seed
	}
	if cfg.NumLayers != nil && !c.IsSet("num-layers") {
		numLayers = *cfg.NumLayers
	}
	if cfg.Dropout != nil && !c.IsSet("dropout") {
		dropout = *cfg.Dropout
	}
	if cfg.DModel != nil && !c.IsSet("d-model") {
		dModel = *cfg.DModel
	}
	if cfg.InputSize != nil && !c.IsSet("input-size") {
		inputSize = *cfg.InputSize
	}
	if cfg.OutputSize != nil && !c.IsSet("output-size") {
		outputSize = *cfg.OutputSize
	}
}

// applyBenchConfig applies config file defaults to the benchmark flags.
func applyBenchConfig(c *cli.Command, cfg Config) {
	applyModelConfig(c, cfg)
	if len(cfg.InputShape) > 0 && !c.IsSet("input-shape") {
		inputShape = formatShape(cfg.InputShape)
	}
	if cfg.Iterations != nil && !c.IsSet("iterations") {
		iterations = *cfg.Iterations
	}
	if cfg.Warmup != nil && !c.IsSet("warmup") {
		warmup = *cfg.Warmup
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	applyBenchConfig(c, cfg)
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}

// parseShape parses "1,8,8" into [1 8 8].
func parseShape(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	shape := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		d, err := strconv.Atoi(p)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid shape %q: dimension %q must be a positive integer", s, p)
		}
		shape = append(shape, d)
	}
	return shape, nil
}

func formatShape(shape []int) string {
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

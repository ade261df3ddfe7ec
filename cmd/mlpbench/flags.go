package main

import (
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mlpbench/internal/arena"
	"github.com/samcharles93/mlpbench/internal/bench"
	"github.com/samcharles93/mlpbench/internal/model"
)

var (
	configFile  string
	backendName string
	arenaBytes  int64
	seed        int64
	numLayers   int64
	dropout     float64
	dModel      int64
	inputSize   int64
	outputSize  int64
	inputShape  string
	iterations  int64
	warmup      int64
	logLevel    string
	logFormat   string
	debug       bool
)

const defaultInputShape = "1,8,8"

func modelFlags() []cli.Flag {
	def := model.DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "backend",
			Usage:       "execution backend (auto, cpu, blas)",
			Value:       "auto",
			Destination: &backendName,
		},
		&cli.Int64Flag{
			Name:        "arena",
			Usage:       "arena capacity in bytes",
			Value:       arena.DefaultCapacity,
			Destination: &arenaBytes,
		},
		&cli.Int64Flag{
			Name:        "seed",
			Usage:       "seed for weight initialisation and the synthetic input",
			Value:       int64(def.Seed),
			Destination: &seed,
		},
		&cli.Int64Flag{
			Name:        "num-layers",
			Aliases:     []string{"layers"},
			Usage:       "number of hidden layers",
			Value:       int64(def.Mlp.NumLayers),
			Destination: &numLayers,
		},
		&cli.Float64Flag{
			Name:        "dropout",
			Usage:       "dropout rate recorded on hidden layers (inactive at inference)",
			Value:       def.Mlp.Dropout,
			Destination: &dropout,
		},
		&cli.Int64Flag{
			Name:        "d-model",
			Usage:       "hidden layer width",
			Value:       int64(def.Mlp.DModel),
			Destination: &dModel,
		},
		&cli.Int64Flag{
			Name:        "input-size",
			Usage:       "flattened input features",
			Value:       int64(def.InputSize),
			Destination: &inputSize,
		},
		&cli.Int64Flag{
			Name:        "output-size",
			Usage:       "output features",
			Value:       int64(def.OutputSize),
			Destination: &outputSize,
		},
	}
}

func benchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "input-shape",
			Usage:       "comma separated shape of the synthetic input",
			Value:       defaultInputShape,
			Destination: &inputShape,
		},
		&cli.Int64Flag{
			Name:        "iterations",
			Aliases:     []string{"n"},
			Usage:       "number of timed forward passes",
			Value:       bench.DefaultIterations,
			Destination: &iterations,
		},
		&cli.Int64Flag{
			Name:        "warmup",
			Usage:       "number of untimed forward passes before measuring",
			Value:       0,
			Destination: &warmup,
		},
	}
}

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml (default: $XDG_CONFIG_HOME/mlpbench/config.yaml)",
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, plain, json, text)",
			Value:       "plain",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

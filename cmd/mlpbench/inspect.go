package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mlpbench/internal/bench"
	"github.com/samcharles93/mlpbench/internal/logger"
	"github.com/samcharles93/mlpbench/internal/model"
)

type inspectOutput struct {
	Config     model.ModelConfig `json:"config"`
	Backend    string            `json:"backend"`
	Kernel     string            `json:"kernel"`
	ParamCount int               `json:"param_count"`
	ParamBytes int               `json:"param_bytes"`
	Arena      int               `json:"arena_capacity"`
	Layers     []model.LayerInfo `json:"layers"`
}

func inspectCmd() *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:  "inspect",
		Usage: "Build the model and print its layers",
		Flags: append(modelFlags(),
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print JSON instead of a table",
				Destination: &asJSON,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			cfg, err := LoadConfig(configFile)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			applyModelConfig(cmd, cfg)

			sess, err := openSession(log)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			defer func() { _ = sess.Close() }()

			m := sess.model
			out := inspectOutput{
				Config:     m.Config(),
				Backend:    sess.dev.Name(),
				Kernel:     sess.dev.Kernel().Name(),
				ParamCount: m.ParamCount(),
				ParamBytes: m.Config().ParamBytes(),
				Arena:      sess.arena.Capacity(),
				Layers:     m.Describe(),
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			fmt.Printf("Backend:  %s (%s)\n", out.Backend, out.Kernel)
			fmt.Printf("Seed:     %d\n", out.Config.Seed)
			fmt.Printf("Params:   %d (%d bytes of %d arena bytes)\n", out.ParamCount, out.ParamBytes, out.Arena)
			fmt.Println()
			bench.WriteLayerTable(os.Stdout, out.Layers)
			return nil
		},
	}
}

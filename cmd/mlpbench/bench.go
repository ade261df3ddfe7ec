package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mlpbench/internal/backend"
	"github.com/samcharles93/mlpbench/internal/bench"
	"github.com/samcharles93/mlpbench/internal/logger"
)

func benchCmd() *cli.Command {
	var (
		format string
		output string
	)

	flags := append([]cli.Flag{}, modelFlags()...)
	flags = append(flags, benchFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "format",
			Usage:       "report format (table, json, none)",
			Value:       "table",
			Destination: &format,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "write the report to a file instead of stdout",
			Destination: &output,
		},
	)

	return &cli.Command{
		Name:    "bench",
		Aliases: []string{"run"},
		Usage:   "Build the model and time repeated forward passes",
		Flags:   flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			cfg, err := LoadConfig(configFile)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			applyBenchConfig(cmd, cfg)

			switch format {
			case "table", "json", "none":
			default:
				return cli.Exit(fmt.Sprintf("error: unknown report format %q", format), 1)
			}
			shape, err := parseShape(inputShape)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if iterations <= 0 {
				return cli.Exit(fmt.Sprintf("error: %v", bench.ErrNoIterations), 1)
			}

			sess, err := openSession(log)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			defer func() { _ = sess.Close() }()

			input, err := sess.dev.Random(backend.DefaultDistribution, shape...)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: allocate input: %v", err), 1)
			}

			r := bench.Runner{
				Model:  sess.model,
				Clock:  bench.NewMonotonicClock(),
				Log:    log,
				Warmup: int(warmup),
			}
			res, err := r.Run(input, int(iterations))
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			rep := bench.NewReport(sess.model, input, res)
			if err := sess.dev.Free(input); err != nil {
				log.Warn("free input", "error", err)
			}

			if format == "none" {
				return nil
			}
			if err := writeReport(rep, format, output); err != nil {
				return cli.Exit(fmt.Sprintf("error: write report: %v", err), 1)
			}
			if output != "" {
				log.Info("report written", "path", output, "id", rep.ID)
			}
			return nil
		},
	}
}

func writeReport(rep *bench.Report, format, output string) (err error) {
	var w io.Writer = os.Stdout
	if output != "" {
		if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
			return err
		}
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}
	if format == "json" {
		return rep.WriteJSON(w)
	}
	return rep.WriteTable(w)
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mlpbench/internal/api"
	"github.com/samcharles93/mlpbench/internal/bench"
	"github.com/samcharles93/mlpbench/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr          string
		headerTimeout time.Duration
		keep          int64
	)

	flags := append([]cli.Flag{}, modelFlags()...)
	flags = append(flags, benchFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "listen address",
			Value:       "127.0.0.1:8080",
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "read-header-timeout",
			Usage:       "time allowed to read request headers",
			Value:       30 * time.Second,
			Destination: &headerTimeout,
		},
		&cli.Int64Flag{
			Name:        "keep",
			Usage:       "number of reports kept in memory",
			Value:       api.DefaultStoreLimit,
			Destination: &keep,
		},
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve benchmarks over HTTP",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			cfg, err := LoadConfig(configFile)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			applyServeConfig(cmd, cfg, &addr)

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

			service := api.NewBenchService(sess.model, api.ServiceConfig{
				Iterations: int(iterations),
				Warmup:     int(warmup),
				InputShape: shape,
				Clock:      bench.NewMonotonicClock(),
				Log:        log.With("component", "bench"),
			})
			server := api.NewServer(api.NewReportStore(int(keep)), service)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr, "backend", sess.dev.Name())
			sc := startConfig(addr, headerTimeout)
			return sc.Start(ctx, e)
		},
	}
}

func startConfig(addr string, headerTimeout time.Duration) echo.StartConfig {
	return echo.StartConfig{
		Address: addr,
		BeforeServeFunc: func(srv *http.Server) error {
			srv.ReadHeaderTimeout = headerTimeout
			return nil
		},
	}
}

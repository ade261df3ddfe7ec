package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mlpbench/internal/logger"
)

var (
	// logSink is the async handler installed by setupLogging. It is drained
	// by closeLogging, which runs from After on success and from handleExit
	// before an exit code terminates the process.
	logSink *logger.AsyncHandler
	// logOutput receives every log line.
	logOutput io.Writer = os.Stderr
	// exitCoder terminates the process for errors carrying an exit code.
	exitCoder = cli.HandleExitCoder
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:           "mlpbench",
		Usage:          "MLP inference benchmark on a fixed-capacity arena",
		Flags:          rootFlags(),
		Before:         setupLogging,
		After:          closeLogging,
		ExitErrHandler: handleExit,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			benchCmd(),
			inspectCmd(),
			serveCmd(),
			versionCmd(),
		},
	}
}

// handleExit drains the log queue before cli exits, since os.Exit skips After.
func handleExit(ctx context.Context, cmd *cli.Command, err error) {
	_ = closeLogging(ctx, cmd)
	exitCoder(err)
}

func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	applyLogConfig(cmd, cfg)

	level := logger.ParseLevel(logLevel)
	if debug {
		level = slog.LevelDebug
	}
	h, err := logger.NewHandler(logFormat, logOutput, level)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	logSink = logger.NewAsyncHandler(h, 0)
	return logger.WithContext(ctx, logger.New(logSink)), nil
}

func closeLogging(context.Context, *cli.Command) error {
	if logSink == nil {
		return nil
	}
	return logSink.Close()
}

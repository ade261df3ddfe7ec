package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mlpbench/internal/backend"
	"github.com/samcharles93/mlpbench/internal/version"
)

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version and host information",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			info := version.Resolve()
			fmt.Printf("version:    %s\n", info.Version)
			if info.Commit != "" {
				fmt.Printf("commit:     %s\n", info.Commit)
			}
			if info.BuildTime != "" {
				fmt.Printf("build time: %s\n", info.BuildTime)
			}
			fmt.Printf("go:         %s\n", info.GoVersion)
			fmt.Printf("backends:   %s\n", backend.Available())

			host := backend.DescribeHost()
			fmt.Printf("cpu:        %s (%d cores, %d threads)\n", host.Brand, host.PhysicalCores, host.LogicalCores)
			return nil
		},
	}
}

package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Connect and measure round-trip latency of repeated NOOP commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEffectiveConfig()
			if err != nil {
				return err
			}
			ctx := context.Background()
			s, teardown, err := dialSession(ctx, cfg)
			if err != nil {
				return err
			}
			defer teardown()

			return runBench(ctx, s, count)
		},
	}
	cmd.Flags().IntVar(&count, "count", 50, "number of NOOP round trips to measure")
	return cmd
}

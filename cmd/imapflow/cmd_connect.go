package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newConnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Connect, authenticate, and hold the session open until interrupted",
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

			waitForSignal(ctx)
			_ = s
			return nil
		},
	}
}

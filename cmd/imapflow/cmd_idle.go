package main

import (
	"context"
	"fmt"

	"github.com/mailwire/imapflow/imapclient"
	"github.com/spf13/cobra"
)

func newIdleCmd() *cobra.Command {
	var mailbox string

	cmd := &cobra.Command{
		Use:   "idle",
		Short: "SELECT a mailbox and hold the background IDLE/NOOP loop open, printing updates",
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

			if _, err := s.Select(ctx, mailbox, imapclient.SelectOptions{ReadOnly: true}); err != nil {
				return err
			}

			s.OnUpdate = func(kind string, value interface{}) {
				fmt.Printf("update %s: %+v\n", kind, value)
			}

			waitForSignal(ctx)
			return nil
		},
	}
	cmd.Flags().StringVar(&mailbox, "mailbox", "INBOX", "mailbox to select before idling")
	return cmd
}

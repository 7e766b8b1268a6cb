package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mailwire/imapflow/imapclient"
)

func newFetchCmd() *cobra.Command {
	var mailbox string
	var sequence string
	var items string
	var byUID bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "SELECT a mailbox and FETCH a sequence of messages",
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

			msgs, err := s.Fetch(ctx, sequence, strings.Split(items, ","), imapclient.FetchOptions{ByUID: byUID})
			if err != nil {
				return err
			}
			for _, m := range msgs {
				fmt.Printf("%+v\n", m)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mailbox, "mailbox", "INBOX", "mailbox to select")
	cmd.Flags().StringVar(&sequence, "sequence", "1:*", "sequence set to fetch")
	cmd.Flags().StringVar(&items, "items", "uid,flags,envelope", "comma-separated FETCH data items")
	cmd.Flags().BoolVar(&byUID, "uid", false, "address the sequence set by UID")
	return cmd
}

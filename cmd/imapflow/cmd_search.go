package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mailwire/imapflow/imapclient"
)

func newSearchCmd() *cobra.Command {
	var mailbox string
	var text string
	var unseen bool
	var byUID bool

	cmd := &cobra.Command{
		Use:   "search",
		Short: "SELECT a mailbox and SEARCH for matching messages",
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

			var query imapclient.SearchQuery
			if text != "" {
				query = append(query, imapclient.SearchTerm{Key: "TEXT", Value: text})
			}
			if unseen {
				query = append(query, imapclient.SearchTerm{Key: "UNSEEN"})
			}
			if len(query) == 0 {
				query = imapclient.SearchQuery{{Key: "ALL"}}
			}

			uids, err := s.Search(ctx, query, imapclient.SearchOptions{ByUID: byUID})
			if err != nil {
				return err
			}
			fmt.Println(uids)
			return nil
		},
	}
	cmd.Flags().StringVar(&mailbox, "mailbox", "INBOX", "mailbox to select")
	cmd.Flags().StringVar(&text, "text", "", "TEXT search term")
	cmd.Flags().BoolVar(&unseen, "unseen", false, "restrict to UNSEEN messages")
	cmd.Flags().BoolVar(&byUID, "uid", false, "return UIDs instead of sequence numbers")
	return cmd
}

package imapclient

import (
	"context"

	"github.com/mailwire/imapflow/charset"
	"github.com/mailwire/imapflow/imapwire"
)

// List issues LIST and assembles the matching mailboxes into a tree rooted
// at an anonymous node, applying special-use detection to each listed
// mailbox (§4.D.10).
func (s *Session) List(ctx context.Context, reference, pattern string) (*MailboxNode, error) {
	req := Request{
		Command: "LIST",
		Attributes: []imapwire.Attribute{
			imapwire.String(charset.EncodeMailboxName(reference)),
			imapwire.String(pattern),
		},
	}
	resp, err := s.Exec(ctx, req, []string{"LIST"}, nil)
	if err != nil {
		return nil, err
	}

	tree := NewMailboxTree()
	specialUseAdvertised := s.HasCapability(CapSpecialUse)
	for _, line := range resp.Payload["LIST"] {
		if len(line.Attributes) < 3 {
			continue
		}
		flags := attrList(line.Attributes[0])
		delimiter := attrString(line.Attributes[1])
		path := attrString(line.Attributes[2])

		node := EnsurePath(tree, path, delimiter)
		node.Flags = flags
		node.Listed = true
		CheckSpecialUse(node, specialUseAdvertised)
	}
	return tree, nil
}

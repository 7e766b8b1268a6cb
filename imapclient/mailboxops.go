package imapclient

import (
	"context"
	"fmt"

	"github.com/mailwire/imapflow/charset"
	"github.com/mailwire/imapflow/imapwire"
)

// Copy issues COPY (or UID COPY).
func (s *Session) Copy(ctx context.Context, sequence, mailbox string, byUID bool) error {
	name := "COPY"
	if byUID {
		name = "UID COPY"
	}
	attrs := []imapwire.Attribute{imapwire.Sequence(sequence), imapwire.String(charset.EncodeMailboxName(mailbox))}
	_, err := s.Exec(ctx, Request{Command: name, Attributes: attrs}, nil, nil)
	return err
}

// Move issues the RFC 6851 MOVE (or UID MOVE) command directly, returning
// the EXPUNGE numbers the server reports for the moved messages in
// arrival order (§9: "observed [3, 4] after a MOVE" — a native MOVE
// still expunges and must surface the same shape as the COPY+STORE+
// EXPUNGE fallback). Callers that want the MOVE-capability fallback
// chain should use MoveMessages instead.
func (s *Session) Move(ctx context.Context, sequence, mailbox string, byUID bool) ([]uint64, error) {
	name := "MOVE"
	if byUID {
		name = "UID MOVE"
	}
	attrs := []imapwire.Attribute{imapwire.Sequence(sequence), imapwire.String(charset.EncodeMailboxName(mailbox))}
	resp, err := s.Exec(ctx, Request{Command: name, Attributes: attrs}, []string{"EXPUNGE"}, nil)
	if err != nil {
		return nil, err
	}
	return ParseExpunge(resp), nil
}

// Expunge permanently removes \Deleted messages. byUID issues UID EXPUNGE
// (RFC 4315 UIDPLUS) scoped to sequence; plain EXPUNGE removes every
// \Deleted message in the selected mailbox and ignores sequence. The
// returned numbers are in server arrival order, not sorted or
// deduplicated (§9: preserve, don't "fix", this against the source).
func (s *Session) Expunge(ctx context.Context, sequence string, byUID bool) ([]uint64, error) {
	if byUID {
		if !s.HasCapability(CapUIDPlus) {
			return nil, fmt.Errorf("imapclient: UID EXPUNGE requires UIDPLUS")
		}
		attrs := []imapwire.Attribute{imapwire.Sequence(sequence)}
		resp, err := s.Exec(ctx, Request{Command: "UID EXPUNGE", Attributes: attrs}, []string{"EXPUNGE"}, nil)
		if err != nil {
			return nil, err
		}
		return ParseExpunge(resp), nil
	}
	resp, err := s.Exec(ctx, Bare("EXPUNGE"), []string{"EXPUNGE"}, nil)
	if err != nil {
		return nil, err
	}
	return ParseExpunge(resp), nil
}

// ParseExpunge collects the "nr" of every EXPUNGE record a command's
// payload accumulated, in arrival order.
func ParseExpunge(resp *Response) []uint64 {
	if resp == nil {
		return nil
	}
	records := resp.Payload["EXPUNGE"]
	out := make([]uint64, 0, len(records))
	for _, r := range records {
		if r.Nr != nil {
			out = append(out, *r.Nr)
		}
	}
	return out
}

// DeleteMessages marks sequence \Deleted and expunges it, returning the
// expunged numbers in arrival order.
func (s *Session) DeleteMessages(ctx context.Context, sequence string, byUID bool) ([]uint64, error) {
	if _, err := s.Store(ctx, sequence, AddFlags(`\Deleted`), StoreOptions{ByUID: byUID, Silent: true}); err != nil {
		return nil, err
	}
	return s.Expunge(ctx, sequence, byUID)
}

// MoveMessages issues MOVE (or UID MOVE) when the server advertises the
// MOVE capability, and falls back to COPY + STORE \Deleted + EXPUNGE
// otherwise (§1: "server-side MOVE ... with documented fall-backs"). Both
// paths return the expunged numbers in arrival order.
func (s *Session) MoveMessages(ctx context.Context, sequence, mailbox string, byUID bool) ([]uint64, error) {
	if s.HasCapability(CapMove) {
		return s.Move(ctx, sequence, mailbox, byUID)
	}
	if err := s.Copy(ctx, sequence, mailbox, byUID); err != nil {
		return nil, err
	}
	return s.DeleteMessages(ctx, sequence, byUID)
}

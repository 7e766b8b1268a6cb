package imapclient

import (
	"context"
	"strings"

	"github.com/mailwire/imapflow/charset"
	"github.com/mailwire/imapflow/imapwire"
)

// parseSelectResponse extracts mailbox state from a SELECT/EXAMINE
// completion (§4.D.8).
func parseSelectResponse(tagged *Response) *Mailbox {
	mb := &Mailbox{ReadOnly: strings.EqualFold(tagged.Code, "READ-ONLY")}

	if lines := tagged.Payload["EXISTS"]; len(lines) > 0 {
		last := lines[len(lines)-1]
		if last.Nr != nil {
			mb.Exists = *last.Nr
		}
	}
	if lines := tagged.Payload["FLAGS"]; len(lines) > 0 {
		last := lines[len(lines)-1]
		if len(last.Attributes) == 1 {
			mb.Flags = attrList(last.Attributes[0])
		}
	}
	for _, line := range tagged.Payload["OK"] {
		switch strings.ToUpper(line.Code) {
		case "PERMANENTFLAGS":
			if len(line.CodeArgs) == 1 {
				mb.PermanentFlags = attrList(line.CodeArgs[0])
			}
		case "UIDVALIDITY":
			if n, ok := parseSingleNumber(line.CodeArgs); ok {
				mb.UIDValidity = n
			}
		case "UIDNEXT":
			if n, ok := parseSingleNumber(line.CodeArgs); ok {
				mb.UIDNext = n
			}
		case "HIGHESTMODSEQ":
			if n, ok := parseSingleNumber(line.CodeArgs); ok {
				mb.HighestModseq = n
			}
		}
	}
	return mb
}

// SelectOptions configures Select (§6: "options: {readOnly?, condstore?}").
type SelectOptions struct {
	ReadOnly  bool
	Condstore bool
}

// Select opens mailbox in read-write (or, if ReadOnly, EXAMINE) mode and
// transitions the session into SELECTED (§4.A, §4.D.8). Condstore is
// only sent as `(CONDSTORE)` when the server advertised the CONDSTORE
// capability; otherwise it's silently ignored rather than sent and
// rejected.
func (s *Session) Select(ctx context.Context, mailbox string, opts SelectOptions) (*Mailbox, error) {
	name := "SELECT"
	if opts.ReadOnly {
		name = "EXAMINE"
	}
	attrs := []imapwire.Attribute{imapwire.String(charset.EncodeMailboxName(mailbox))}
	if opts.Condstore && s.HasCapability(CapCondstore) {
		attrs = append(attrs, imapwire.List(imapwire.Atom("CONDSTORE")))
	}
	req := Request{Command: name, Attributes: attrs}
	resp, err := s.Exec(ctx, req, []string{"EXISTS", "RECENT", "FLAGS", "OK"}, nil)
	if err != nil {
		return nil, err
	}
	mb := parseSelectResponse(resp)
	s.enterSelected(mailbox, mb)
	return mb, nil
}

package imapclient

import (
	"fmt"

	"github.com/mailwire/imapflow/charset"
	"github.com/mailwire/imapflow/imapwire"
)

// parseEnvelope decodes an ENVELOPE fetch item's positional 10-tuple
// (§4.D.3): date, subject, from, sender, reply-to, to, cc, bcc,
// in-reply-to, message-id.
func parseEnvelope(v imapwire.Attribute) (*Envelope, error) {
	if v.Kind != imapwire.KindList || len(v.List) < 10 {
		return nil, fmt.Errorf("imapclient: malformed ENVELOPE")
	}
	items := v.List
	return &Envelope{
		Date:      attrString(items[0]),
		Subject:   charset.DecodeWord(attrString(items[1])),
		From:      parseAddressList(items[2]),
		Sender:    parseAddressList(items[3]),
		ReplyTo:   parseAddressList(items[4]),
		To:        parseAddressList(items[5]),
		CC:        parseAddressList(items[6]),
		BCC:       parseAddressList(items[7]),
		InReplyTo: attrString(items[8]),
		MessageID: attrString(items[9]),
	}, nil
}

// parseAddressList decodes an envelope address-list slot: NIL, or a list
// of [nameWord, source, mailbox, host] entries.
func parseAddressList(v imapwire.Attribute) []Address {
	if v.IsNil() || v.Kind != imapwire.KindList {
		return nil
	}
	out := make([]Address, 0, len(v.List))
	for _, entry := range v.List {
		if entry.Kind != imapwire.KindList || len(entry.List) < 4 {
			continue
		}
		name, mailbox, host := entry.List[0], entry.List[2], entry.List[3]
		addr := Address{}
		if !name.IsNil() {
			addr.Name = charset.DecodeWord(attrString(name))
		}
		switch {
		case !mailbox.IsNil() && !host.IsNil():
			addr.Address = attrString(mailbox) + "@" + attrString(host)
		case !mailbox.IsNil():
			addr.Address = attrString(mailbox)
		}
		out = append(out, addr)
	}
	return out
}

package imapclient

import (
	"context"
	"strconv"
	"strings"

	"github.com/mailwire/imapflow/imapwire"
)

// FetchOptions configures BuildFetch (§4.D.1).
type FetchOptions struct {
	ByUID        bool
	ChangedSince uint64
}

// BuildFetch turns a sequence set and an item selector into a FETCH
// command. items is either a macro string ("all" | "fast" | "full") or a
// []string of item expressions.
func BuildFetch(sequence string, items interface{}, opts FetchOptions) Request {
	name := "FETCH"
	if opts.ByUID {
		name = "UID FETCH"
	}
	attrs := []imapwire.Attribute{imapwire.Sequence(sequence), buildFetchItems(items)}
	if opts.ChangedSince != 0 {
		attrs = append(attrs, imapwire.List(imapwire.Atom("CHANGEDSINCE"), imapwire.Number(opts.ChangedSince)))
	}
	return Request{Command: name, Attributes: attrs}
}

func buildFetchItems(items interface{}) imapwire.Attribute {
	switch v := items.(type) {
	case string:
		return imapwire.Atom(strings.ToUpper(v))
	case []string:
		parsed := make([]imapwire.Attribute, 0, len(v))
		for _, it := range v {
			parsed = append(parsed, parseFetchItem(it))
		}
		if len(parsed) == 1 {
			return parsed[0]
		}
		return imapwire.List(parsed...)
	default:
		return imapwire.Atom("")
	}
}

// parseFetchItem re-parses complex item expressions (sections, partials,
// nested lists such as "modseq (1234567)") through the wire codec's
// synthetic-command trick, falling back to a bare atom on failure (§4.D.1).
func parseFetchItem(item string) imapwire.Attribute {
	if isSimpleAtom(item) {
		return imapwire.Atom(strings.ToUpper(item))
	}
	attr, err := imapwire.ParseSyntheticAttributes(strings.ToUpper(item))
	if err != nil {
		return imapwire.Atom(item)
	}
	return attr
}

func isSimpleAtom(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', ']', '(', ')', '<', '>', ' ':
			return false
		}
	}
	return s != ""
}

// ParseFetch parses every buffered untagged FETCH record on resp into
// Messages (§4.D.2).
func ParseFetch(resp *Response) []*Message {
	lines := resp.Payload["FETCH"]
	out := make([]*Message, 0, len(lines))
	for _, line := range lines {
		if m, err := ParseFetchResponse(line); err == nil {
			out = append(out, m)
		}
	}
	return out
}

// ParseFetchResponse parses a single untagged FETCH record.
func ParseFetchResponse(resp *imapwire.Response) (*Message, error) {
	if resp.Nr == nil {
		return nil, errNotFetch
	}
	if len(resp.Attributes) != 1 || resp.Attributes[0].Kind != imapwire.KindList {
		return nil, errNotFetch
	}
	pairs := resp.Attributes[0].List
	msg := &Message{Seq: *resp.Nr, Fields: make(map[string]interface{}, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		key := imapwire.CanonicalKey(pairs[i])
		field := imapwire.MessageKey(pairs[i])
		value := pairs[i+1]
		switch key {
		case "uid", "rfc822.size":
			n, ok := value.Uint()
			if !ok {
				n = 0
			}
			msg.Fields[field] = n
		case "modseq":
			if value.Kind == imapwire.KindList && len(value.List) >= 1 {
				if n, ok := value.List[0].Uint(); ok {
					msg.Fields[field] = n
				}
			}
		case "flags":
			if value.Kind == imapwire.KindList {
				flags := make([]string, 0, len(value.List))
				for _, f := range value.List {
					flags = append(flags, f.Value)
				}
				msg.Fields[field] = flags
			}
		case "envelope":
			if env, err := parseEnvelope(value); err == nil {
				msg.Fields[field] = env
			}
		case "bodystructure", "body":
			if bs, err := parseBodyStructure(value); err == nil {
				msg.Fields[field] = bs
			}
		default:
			msg.Fields[field] = value.Value
		}
	}
	return msg, nil
}

var errNotFetch = &ProtocolError{Command: "FETCH", Status: "BAD", Message: "not a FETCH record"}

// Fetch issues a FETCH (or UID FETCH) command and returns the parsed
// messages.
func (s *Session) Fetch(ctx context.Context, sequence string, items interface{}, opts FetchOptions) ([]*Message, error) {
	resp, err := s.Exec(ctx, BuildFetch(sequence, items, opts), []string{"FETCH"}, nil)
	if err != nil {
		return nil, err
	}
	return ParseFetch(resp), nil
}

func attrString(a imapwire.Attribute) string {
	if a.IsNil() {
		return ""
	}
	return a.Value
}

func joinBodyPath(parent string, idx int) string {
	if parent == "" {
		return strconv.Itoa(idx)
	}
	return parent + "." + strconv.Itoa(idx)
}

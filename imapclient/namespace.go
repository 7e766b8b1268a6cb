package imapclient

import (
	"context"

	"github.com/mailwire/imapflow/imapwire"
)

// ParseNamespace decodes the NAMESPACE response (§4.D.9, RFC 2342). It
// reports false if the payload is empty or absent.
func ParseNamespace(resp *Response) (NamespaceSet, bool) {
	lines := resp.Payload["NAMESPACE"]
	if len(lines) == 0 {
		return NamespaceSet{}, false
	}
	line := lines[len(lines)-1]
	if len(line.Attributes) < 3 {
		return NamespaceSet{}, false
	}
	personal, _ := parseNamespaceSlot(line.Attributes[0])
	users, _ := parseNamespaceSlot(line.Attributes[1])
	shared, _ := parseNamespaceSlot(line.Attributes[2])
	return NamespaceSet{Personal: personal, Users: users, Shared: shared}, true
}

func parseNamespaceSlot(v imapwire.Attribute) ([]Namespace, bool) {
	if v.IsNil() || v.Kind != imapwire.KindList {
		return nil, false
	}
	out := make([]Namespace, 0, len(v.List))
	for _, entry := range v.List {
		if entry.Kind != imapwire.KindList || len(entry.List) < 2 {
			continue
		}
		out = append(out, Namespace{
			Prefix:    attrString(entry.List[0]),
			Delimiter: attrString(entry.List[1]),
		})
	}
	return out, true
}

// Namespace issues the NAMESPACE command (only meaningful when the server
// advertises the NAMESPACE capability).
func (s *Session) Namespace(ctx context.Context) (NamespaceSet, bool, error) {
	resp, err := s.Exec(ctx, Bare("NAMESPACE"), []string{"NAMESPACE"}, nil)
	if err != nil {
		return NamespaceSet{}, false, err
	}
	ns, ok := ParseNamespace(resp)
	return ns, ok, nil
}

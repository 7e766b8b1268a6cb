package imapclient

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/mailwire/imapflow/imapwire"
)

// SearchTerm is one key/value pair of a SEARCH query. Ordered slices are
// used instead of a map so the wire encoding is deterministic (§4.D.5).
type SearchTerm struct {
	Key   string
	Value interface{}
}

// SearchQuery is a nested SEARCH expression. A SearchTerm's Value may be a
// number, string, time.Time, []interface{}, or a nested SearchQuery (used
// for OR/NOT subqueries).
type SearchQuery []SearchTerm

// SearchOptions configures BuildSearch.
type SearchOptions struct {
	ByUID bool
}

// BuildSearch compiles a SearchQuery into a SEARCH (or UID SEARCH) command.
func BuildSearch(query SearchQuery, opts SearchOptions) Request {
	name := "SEARCH"
	if opts.ByUID {
		name = "UID SEARCH"
	}
	return Request{Command: name, Attributes: buildSearchTerms(query)}
}

func buildSearchTerms(query SearchQuery) []imapwire.Attribute {
	attrs := make([]imapwire.Attribute, 0, len(query)*2)
	for _, term := range query {
		attrs = append(attrs, imapwire.Atom(strings.ToUpper(term.Key)))
		if strings.EqualFold(term.Key, "uid") {
			if seq, ok := term.Value.(string); ok {
				attrs = append(attrs, imapwire.Sequence(seq))
				continue
			}
		}
		attrs = append(attrs, encodeSearchValue(term.Value)...)
	}
	return attrs
}

func encodeSearchValue(v interface{}) []imapwire.Attribute {
	switch val := v.(type) {
	case nil:
		return nil
	case int:
		return []imapwire.Attribute{imapwire.Number(uint64(val))}
	case int64:
		return []imapwire.Attribute{imapwire.Number(uint64(val))}
	case uint64:
		return []imapwire.Attribute{imapwire.Number(val)}
	case string:
		return []imapwire.Attribute{imapwire.String(val)}
	case time.Time:
		return []imapwire.Attribute{imapwire.String(val.Format("2-Jan-2006"))}
	case []interface{}:
		out := make([]imapwire.Attribute, 0, len(val))
		for _, e := range val {
			out = append(out, encodeSearchValue(e)...)
		}
		return out
	case SearchQuery:
		return buildSearchTerms(val)
	default:
		return nil
	}
}

// ParseSearch flattens every untagged SEARCH record's number list into a
// sorted, deduplicated slice (§4.D.6). An empty payload returns an empty
// slice.
func ParseSearch(resp *Response) []uint64 {
	seen := make(map[uint64]bool)
	var out []uint64
	for _, line := range resp.Payload["SEARCH"] {
		for _, a := range line.Attributes {
			if n, ok := a.Uint(); ok && !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Search issues SEARCH (or UID SEARCH) and returns the matching sequence
// numbers or UIDs.
func (s *Session) Search(ctx context.Context, query SearchQuery, opts SearchOptions) ([]uint64, error) {
	resp, err := s.Exec(ctx, BuildSearch(query, opts), []string{"SEARCH"}, nil)
	if err != nil {
		return nil, err
	}
	return ParseSearch(resp), nil
}

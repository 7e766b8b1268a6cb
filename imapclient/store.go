package imapclient

import (
	"context"

	"github.com/mailwire/imapflow/imapwire"
)

// StoreFlags selects the STORE action: exactly one of Set, Add, Remove
// should be non-empty (§4.D.7).
type StoreFlags struct {
	Set    []string
	Add    []string
	Remove []string
}

// SetFlags builds a StoreFlags that replaces the flag set.
func SetFlags(flags ...string) StoreFlags { return StoreFlags{Set: flags} }

// AddFlags builds a StoreFlags that adds flags.
func AddFlags(flags ...string) StoreFlags { return StoreFlags{Add: flags} }

// RemoveFlags builds a StoreFlags that removes flags.
func RemoveFlags(flags ...string) StoreFlags { return StoreFlags{Remove: flags} }

// StoreOptions configures BuildStore.
type StoreOptions struct {
	ByUID  bool
	Silent bool
}

// BuildStore compiles a STORE (or UID STORE) command.
func BuildStore(sequence string, flags StoreFlags, opts StoreOptions) Request {
	name := "STORE"
	if opts.ByUID {
		name = "UID STORE"
	}

	action, list := "FLAGS", flags.Set
	switch {
	case len(flags.Add) > 0:
		action, list = "+FLAGS", flags.Add
	case len(flags.Remove) > 0:
		action, list = "-FLAGS", flags.Remove
	}
	if opts.Silent {
		action += ".SILENT"
	}

	items := make([]imapwire.Attribute, 0, len(list))
	for _, f := range list {
		items = append(items, imapwire.Atom(f))
	}

	attrs := []imapwire.Attribute{
		imapwire.Sequence(sequence),
		imapwire.Atom(action),
		imapwire.List(items...),
	}
	return Request{Command: name, Attributes: attrs}
}

// Store issues STORE (or UID STORE) and returns the resulting FETCH
// records the server pushes back (empty when Silent is set).
func (s *Session) Store(ctx context.Context, sequence string, flags StoreFlags, opts StoreOptions) ([]*Message, error) {
	resp, err := s.Exec(ctx, BuildStore(sequence, flags, opts), []string{"FETCH"}, nil)
	if err != nil {
		return nil, err
	}
	return ParseFetch(resp), nil
}

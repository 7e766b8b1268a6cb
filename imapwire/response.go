package imapwire

// Response is the decoder's output for a single logical response line: a
// tagged completion ("a1 OK ...", "a1 NO ...", "a1 BAD ..."), a greeting
// ("* OK ..." / "* PREAUTH ..." / "* BYE ..."), or an untagged data
// response ("* 4 EXISTS", "* 12 FETCH (...)", "* CAPABILITY ...").
type Response struct {
	// Tag is "*" for untagged responses, the issuing command's tag for
	// tagged completions, and "+" for command-continuation requests.
	Tag string

	// Nr is set for responses of the form "* <number> <name>" (EXISTS,
	// EXPUNGE, RECENT, FETCH).
	Nr *uint64

	// Name is the response's command/status word, upper-cased: OK, NO,
	// BAD, PREAUTH, BYE, CAPABILITY, FLAGS, EXISTS, EXPUNGE, FETCH,
	// SEARCH, LIST, LSUB, NAMESPACE, STATUS, and so on.
	Name string

	// Code is the bracketed response code atom on OK/NO/BAD/BYE/PREAUTH
	// lines, e.g. CAPABILITY, PERMANENTFLAGS, UIDVALIDITY, READ-ONLY,
	// ALERT. Empty when no "[...]" code was present.
	Code string

	// CodeArgs holds the attributes inside the response code's brackets,
	// e.g. the capability atoms for "[CAPABILITY IMAP4rev1 IDLE]".
	CodeArgs []Attribute

	// HumanReadable is the free text following the status/code.
	HumanReadable string

	// Attributes holds the response's data payload: the FETCH pair list,
	// the SEARCH number list, the CAPABILITY atom list, and so on.
	Attributes []Attribute
}

// Tagged reports whether this is a tagged command completion.
func (r *Response) Tagged() bool {
	return r.Tag != "" && r.Tag != "*" && r.Tag != "+"
}

// Continuation reports whether this is a "+" continuation request.
func (r *Response) Continuation() bool { return r.Tag == "+" }

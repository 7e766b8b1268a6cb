package imapclient

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mailwire/imapflow/imapwire"
)

// Request is a command to submit through Exec: either a bare command
// (Bare("NOOP")) or a structured command with attributes.
type Request struct {
	Command    string
	Attributes []imapwire.Attribute
}

// Bare builds a Request for a command with no attributes.
func Bare(command string) Request { return Request{Command: command} }

// ExecOptions carries protocol-specific hooks for a single Exec call.
type ExecOptions struct {
	// OnPlusTagged handles a command-continuation ("+ ...") response,
	// returning the raw bytes to write back (without trailing CRLF,
	// which is added for the caller), used by AUTHENTICATE XOAUTH2.
	OnPlusTagged func(resp *imapwire.Response) ([]byte, error)
}

// Response is the tagged completion Exec returns.
type Response struct {
	Status        string // OK, NO, BAD
	Code          string
	HumanReadable string
	Capability    []string
	Payload       map[string][]*imapwire.Response
}

// Exec submits req and blocks until its tagged completion arrives. Idle
// is broken first if the session is currently idling (§4.B, §4.C). At
// most one foreground command is ever in flight (§5); concurrent callers
// queue on the same semaphore FIFO is not guaranteed, only mutual
// exclusion is.
func (s *Session) Exec(ctx context.Context, req Request, acceptUntagged []string, opts *ExecOptions) (*Response, error) {
	// Signal any open server-side IDLE to end before waiting for the
	// semaphore it holds for the cycle's duration (§4.C).
	s.breakIdle()

	select {
	case <-s.execSem:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.closed:
		return nil, fmt.Errorf("imapclient: session closed")
	}
	defer func() { s.execSem <- struct{}{} }()

	tag := s.nextTag()
	acc := make(map[string]bool, len(acceptUntagged))
	for _, k := range acceptUntagged {
		acc[strings.ToUpper(k)] = true
	}

	done := make(chan *imapwire.Response, 1)
	s.activeMu.Lock()
	s.activeTag = tag
	s.activeCmd = strings.ToUpper(firstWord(req.Command))
	s.activeAcc = acc
	s.activeBuf = make(map[string][]*imapwire.Response)
	s.activeDone = done
	s.activeOpts = opts
	s.activeMu.Unlock()

	cmd := imapwire.Command{Name: req.Command, Attributes: req.Attributes}
	if err := s.sock.Send(imapwire.EncodeCommand(tag, cmd)); err != nil {
		s.clearActive()
		return nil, err
	}

	var tagged *imapwire.Response
	select {
	case tagged = <-done:
	case <-ctx.Done():
		s.clearActive()
		return nil, ctx.Err()
	case <-s.closed:
		return nil, fmt.Errorf("imapclient: session closed while %s was in flight", req.Command)
	}

	return s.buildResponse(tagged)
}

func firstWord(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

func (s *Session) clearActive() {
	s.activeMu.Lock()
	s.activeTag = ""
	s.activeAcc = nil
	s.activeBuf = nil
	s.activeDone = nil
	s.activeOpts = nil
	s.activeMu.Unlock()
}

func (s *Session) nextTag() string {
	s.tagMu.Lock()
	s.tagN++
	n := s.tagN
	s.tagMu.Unlock()
	return "A" + strconv.FormatUint(n, 10)
}

// buildResponse classifies a tagged completion into (*Response, error)
// per §4.B.3: exactly one of the two is non-nil.
func (s *Session) buildResponse(tagged *imapwire.Response) (*Response, error) {
	s.activeMu.Lock()
	payload := s.activeBuf
	s.activeMu.Unlock()
	s.clearActive()

	status := strings.ToUpper(tagged.Name)
	resp := &Response{
		Status:        status,
		Code:          tagged.Code,
		HumanReadable: tagged.HumanReadable,
		Payload:       payload,
	}

	if strings.EqualFold(tagged.Code, "CAPABILITY") {
		caps := make([]string, 0, len(tagged.CodeArgs))
		for _, a := range tagged.CodeArgs {
			caps = append(caps, strings.ToUpper(a.Value))
		}
		resp.Capability = caps
		s.capability.Replace(caps)
	}

	if status == "NO" || status == "BAD" {
		msg := tagged.HumanReadable
		if msg == "" {
			msg = "Error"
		}
		return nil, &ProtocolError{
			Status:  status,
			Code:    tagged.Code,
			Message: msg,
		}
	}
	return resp, nil
}

// dispatch routes one parsed Response from the read loop: a tagged
// completion wakes the waiting Exec call; a continuation request invokes
// the active command's OnPlusTagged hook; anything else is an untagged
// response handed to the demultiplexer.
func (s *Session) dispatch(resp *imapwire.Response) {
	switch {
	case resp.Continuation():
		s.handleContinuation(resp)
	case resp.Tagged():
		s.handleTagged(resp)
	default:
		s.demux(resp)
	}
}

func (s *Session) handleTagged(resp *imapwire.Response) {
	s.activeMu.Lock()
	tag := s.activeTag
	done := s.activeDone
	s.activeMu.Unlock()

	if done == nil || resp.Tag != tag {
		s.log("session", fmt.Sprintf("unexpected tagged response %q (active=%q)", resp.Tag, tag))
		return
	}
	done <- resp
}

func (s *Session) handleContinuation(resp *imapwire.Response) {
	s.activeMu.Lock()
	opts := s.activeOpts
	s.activeMu.Unlock()

	if opts == nil || opts.OnPlusTagged == nil {
		// No synchronizing-literal or SASL continuation expected; ack
		// with a bare line so the server doesn't stall waiting for us.
		s.sock.Send([]byte("\r\n"))
		return
	}
	reply, err := opts.OnPlusTagged(resp)
	if err != nil {
		s.fireError(err)
		return
	}
	if reply == nil {
		// Hook only wanted to observe the continuation (e.g. IDLE's "+
		// idling"); the real follow-up write, if any, happens later.
		return
	}
	s.sock.Send(append(reply, '\r', '\n'))
}

package imapclient

import (
	"strconv"
	"strings"

	"github.com/mailwire/imapflow/imapwire"
)

// demux routes one untagged response (§4.E). CAPABILITY (and an OK with a
// CAPABILITY code) replaces the session's capability set, BYE moves the
// session to LOGOUT, and EXISTS/EXPUNGE/RECENT/FLAGS/FETCH and the known
// OK response codes are reported to OnUpdate, whether or not a command is
// active. Separately, any untagged response is buffered for the currently
// active command if that command listed its name in acceptUntagged.
func (s *Session) demux(resp *imapwire.Response) {
	name := strings.ToUpper(resp.Name)

	switch name {
	case "BYE":
		s.log("session", "server sent BYE: "+resp.HumanReadable)
		s.setState(StateLogout)
	case "CAPABILITY":
		caps := make([]string, 0, len(resp.Attributes))
		for _, a := range resp.Attributes {
			caps = append(caps, strings.ToUpper(a.Value))
		}
		s.capability.Replace(caps)
		s.fireUpdate("capability", caps)
	case "OK":
		s.handleUntaggedOK(resp)
	case "FLAGS":
		if len(resp.Attributes) == 1 {
			flags := attrList(resp.Attributes[0])
			s.fireUpdate("flags", flags)
		}
	case "EXISTS", "RECENT":
		if resp.Nr != nil {
			s.fireUpdate(strings.ToLower(name), *resp.Nr)
		}
	case "EXPUNGE":
		if resp.Nr != nil {
			s.fireUpdate("expunge", *resp.Nr)
		}
	case "FETCH":
		if msg, err := ParseFetchResponse(resp); err == nil {
			s.fireUpdate("fetch", msg)
		}
	}

	s.bufferForActive(name, resp)
}

func (s *Session) handleUntaggedOK(resp *imapwire.Response) {
	switch strings.ToUpper(resp.Code) {
	case "CAPABILITY":
		caps := make([]string, 0, len(resp.CodeArgs))
		for _, a := range resp.CodeArgs {
			caps = append(caps, strings.ToUpper(a.Value))
		}
		if len(caps) > 0 {
			s.capability.Replace(caps)
			s.fireUpdate("capability", caps)
		}
	case "UIDVALIDITY", "UIDNEXT", "HIGHESTMODSEQ":
		if n, ok := parseSingleNumber(resp.CodeArgs); ok {
			s.fireUpdate(strings.ToLower(resp.Code), n)
		}
	case "PERMANENTFLAGS":
		if len(resp.CodeArgs) == 1 {
			s.fireUpdate("permanentflags", attrList(resp.CodeArgs[0]))
		}
	case "READ-ONLY", "READ-WRITE":
		s.fireUpdate("accessmode", resp.Code)
	case "ALERT":
		s.fireUpdate("alert", resp.HumanReadable)
	}
}

func (s *Session) bufferForActive(name string, resp *imapwire.Response) {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	if s.activeAcc == nil || !s.activeAcc[name] {
		return
	}
	if s.activeBuf == nil {
		s.activeBuf = make(map[string][]*imapwire.Response)
	}
	s.activeBuf[name] = append(s.activeBuf[name], resp)
}

func (s *Session) fireUpdate(kind string, value interface{}) {
	if s.OnUpdate != nil {
		s.OnUpdate(kind, value)
	}
}

func attrList(a imapwire.Attribute) []string {
	out := make([]string, 0, len(a.List))
	for _, item := range a.List {
		out = append(out, item.Value)
	}
	return out
}

func parseSingleNumber(args []imapwire.Attribute) (uint64, bool) {
	if len(args) != 1 {
		return 0, false
	}
	if n, ok := args[0].Uint(); ok {
		return n, true
	}
	n, err := strconv.ParseUint(args[0].Value, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

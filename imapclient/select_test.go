package imapclient

import (
	"testing"

	"github.com/mailwire/imapflow/imapwire"
)

func TestParseSelectResponse(t *testing.T) {
	resp := &Response{
		Code: "READ-WRITE",
		Payload: map[string][]*imapwire.Response{
			"EXISTS": {mustParseOne(t, "* 172 EXISTS")},
			"FLAGS":  {mustParseOne(t, "* FLAGS (\\Answered \\Flagged \\Deleted \\Seen \\Draft)")},
			"OK": {
				mustParseOne(t, "* OK [PERMANENTFLAGS (\\Deleted \\Seen \\*)] Limited"),
				mustParseOne(t, "* OK [UIDVALIDITY 3857529045] UIDs valid"),
				mustParseOne(t, "* OK [UIDNEXT 4392] Predicted next UID"),
				mustParseOne(t, "* OK [HIGHESTMODSEQ 715194045007] Highest"),
			},
		},
	}
	mb := parseSelectResponse(resp)
	if mb.ReadOnly {
		t.Fatalf("ReadOnly = true, want false")
	}
	if mb.Exists != 172 {
		t.Fatalf("Exists = %d, want 172", mb.Exists)
	}
	if len(mb.Flags) != 5 {
		t.Fatalf("Flags = %v", mb.Flags)
	}
	if len(mb.PermanentFlags) != 3 {
		t.Fatalf("PermanentFlags = %v", mb.PermanentFlags)
	}
	if mb.UIDValidity != 3857529045 {
		t.Fatalf("UIDValidity = %d", mb.UIDValidity)
	}
	if mb.UIDNext != 4392 {
		t.Fatalf("UIDNext = %d", mb.UIDNext)
	}
	if mb.HighestModseq != 715194045007 {
		t.Fatalf("HighestModseq = %d", mb.HighestModseq)
	}
}

func TestParseSelectResponseReadOnly(t *testing.T) {
	resp := &Response{Code: "READ-ONLY", Payload: map[string][]*imapwire.Response{}}
	mb := parseSelectResponse(resp)
	if !mb.ReadOnly {
		t.Fatalf("ReadOnly = false, want true")
	}
}

func TestCondstoreCapabilityAbsentAfterReplace(t *testing.T) {
	s := New(Options{})
	s.capability.Replace([]string{"IMAP4rev1"})
	if s.HasCapability(CapCondstore) {
		t.Fatalf("expected no CONDSTORE capability")
	}
}

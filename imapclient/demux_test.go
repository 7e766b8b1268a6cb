package imapclient

import "testing"

func TestDemuxExistsFiresUpdate(t *testing.T) {
	s := New(Options{})
	var kind string
	var val interface{}
	s.OnUpdate = func(k string, v interface{}) { kind, val = k, v }

	s.demux(mustParseOne(t, "* 23 EXISTS"))

	if kind != "exists" || val.(uint64) != 23 {
		t.Fatalf("kind=%q val=%v", kind, val)
	}
}

func TestDemuxCapabilityReplacesSet(t *testing.T) {
	s := New(Options{})
	s.demux(mustParseOne(t, "* CAPABILITY IMAP4rev1 IDLE UIDPLUS"))

	if !s.HasCapability(CapIdle) || !s.HasCapability(CapUIDPlus) {
		t.Fatalf("capabilities not replaced: %v", s.Capabilities())
	}
}

func TestDemuxUntaggedOKUidvalidity(t *testing.T) {
	s := New(Options{})
	var val interface{}
	s.OnUpdate = func(k string, v interface{}) {
		if k == "uidvalidity" {
			val = v
		}
	}
	s.demux(mustParseOne(t, "* OK [UIDVALIDITY 3857529045] UIDs valid"))

	if val == nil || val.(uint64) != 3857529045 {
		t.Fatalf("val = %v", val)
	}
}

func TestDemuxBuffersOnlyAcceptedKinds(t *testing.T) {
	s := New(Options{})
	s.activeAcc = map[string]bool{"FLAGS": true}

	s.demux(mustParseOne(t, "* 4 EXISTS"))
	s.demux(mustParseOne(t, "* FLAGS (\\Seen \\Deleted)"))

	if len(s.activeBuf["EXISTS"]) != 0 {
		t.Fatalf("EXISTS should not have been buffered")
	}
	if len(s.activeBuf["FLAGS"]) != 1 {
		t.Fatalf("FLAGS should have been buffered once, got %d", len(s.activeBuf["FLAGS"]))
	}
}

func TestDemuxBye(t *testing.T) {
	s := New(Options{})
	s.demux(mustParseOne(t, "* BYE server shutting down"))

	if s.State() != StateLogout {
		t.Fatalf("State() = %v, want StateLogout", s.State())
	}
}

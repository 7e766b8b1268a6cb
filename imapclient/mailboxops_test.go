package imapclient

import (
	"context"
	"testing"
	"time"

	"github.com/mailwire/imapflow/imapwire"
)

// TestParseExpungeUnsortedUndeduped preserves the source's documented
// quirk (§9): arrival order, no sort, no dedup.
func TestParseExpungeUnsortedUndeduped(t *testing.T) {
	resp := &Response{Payload: map[string][]*imapwire.Response{
		"EXPUNGE": {
			mustParseOne(t, "* 4 EXPUNGE"),
			mustParseOne(t, "* 3 EXPUNGE"),
		},
	}}
	got := ParseExpunge(resp)
	want := []uint64{4, 3}
	if len(got) != len(want) {
		t.Fatalf("got = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got = %v, want %v", got, want)
		}
	}
}

func TestParseExpungeNil(t *testing.T) {
	if got := ParseExpunge(nil); got != nil {
		t.Fatalf("got = %v, want nil", got)
	}
}

// TestMoveSurfacesExpungedNumbers drives a native MOVE end-to-end: the
// fast path must report the EXPUNGE lines the server sends alongside the
// tagged OK, not just the COPY+STORE+EXPUNGE fallback (§9: "observed
// [3, 4] after a MOVE").
func TestMoveSurfacesExpungedNumbers(t *testing.T) {
	script := map[string][]string{
		"CAPABILITY": {"* CAPABILITY IMAP4rev1 MOVE", "$TAG OK CAPABILITY completed"},
		"LOGIN":      {"$TAG OK [CAPABILITY IMAP4rev1 MOVE] LOGIN completed"},
		"MOVE": {
			"* 3 EXPUNGE",
			"* 4 EXPUNGE",
			"$TAG OK MOVE completed",
		},
	}
	s, _ := newTestSession(t, script)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Connect(ctx); err != nil {
		t.Fatalf("Connect error = %v", err)
	}
	defer s.Close(ctx)

	got, err := s.Move(ctx, "1:2", "Archive", false)
	if err != nil {
		t.Fatalf("Move error = %v", err)
	}
	want := []uint64{3, 4}
	if len(got) != len(want) {
		t.Fatalf("got = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got = %v, want %v", got, want)
		}
	}
}

// TestMoveMessagesFallsBackWithoutCapability drives the COPY+STORE+
// EXPUNGE fallback end-to-end when the server never advertised MOVE.
func TestMoveMessagesFallsBackWithoutCapability(t *testing.T) {
	script := map[string][]string{
		"CAPABILITY": {"* CAPABILITY IMAP4rev1", "$TAG OK CAPABILITY completed"},
		"LOGIN":      {"$TAG OK [CAPABILITY IMAP4rev1] LOGIN completed"},
		"COPY":       {"$TAG OK COPY completed"},
		"STORE":      {"$TAG OK STORE completed"},
		"EXPUNGE":    {"* 3 EXPUNGE", "$TAG OK EXPUNGE completed"},
	}
	s, _ := newTestSession(t, script)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Connect(ctx); err != nil {
		t.Fatalf("Connect error = %v", err)
	}
	defer s.Close(ctx)

	if s.HasCapability(CapMove) {
		t.Fatalf("expected no MOVE capability")
	}
	got, err := s.MoveMessages(ctx, "1", "Archive", false)
	if err != nil {
		t.Fatalf("MoveMessages error = %v", err)
	}
	if len(got) != 1 || got[0] != 3 {
		t.Fatalf("got = %v, want [3]", got)
	}
}

package imapclient

import "testing"

func TestParseEnvelope(t *testing.T) {
	resp := mustParseOne(t, `* 1 FETCH (ENVELOPE ("Tue, 1 Jan 2026 10:00:00 +0000" "=?UTF-8?B?SGVsbG8=?=" (("A" NIL "a" "example.com")) (("A" NIL "a" "example.com")) NIL (("B" NIL "b" "example.org")) NIL NIL NIL "<id1@example.com>"))`)
	msg, err := ParseFetchResponse(resp)
	if err != nil {
		t.Fatalf("ParseFetchResponse error = %v", err)
	}
	v, ok := msg.Get("envelope")
	if !ok {
		t.Fatalf("envelope missing")
	}
	env := v.(*Envelope)
	if env.Subject != "Hello" {
		t.Fatalf("Subject = %q, want Hello", env.Subject)
	}
	if len(env.From) != 1 || env.From[0].Address != "a@example.com" {
		t.Fatalf("From = %+v", env.From)
	}
	if env.From[0].Name != "A" {
		t.Fatalf("From[0].Name = %q, want A", env.From[0].Name)
	}
	if len(env.To) != 1 || env.To[0].Address != "b@example.org" {
		t.Fatalf("To = %+v", env.To)
	}
	if env.MessageID != "<id1@example.com>" {
		t.Fatalf("MessageID = %q", env.MessageID)
	}
}

func TestParseEnvelopeNilAddressLists(t *testing.T) {
	resp := mustParseOne(t, `* 1 FETCH (ENVELOPE (NIL NIL NIL NIL NIL NIL NIL NIL NIL NIL))`)
	msg, err := ParseFetchResponse(resp)
	if err != nil {
		t.Fatalf("ParseFetchResponse error = %v", err)
	}
	v, _ := msg.Get("envelope")
	env := v.(*Envelope)
	if env.From != nil || env.To != nil {
		t.Fatalf("expected nil address lists, got From=%+v To=%+v", env.From, env.To)
	}
}

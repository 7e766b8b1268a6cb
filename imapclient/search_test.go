package imapclient

import (
	"testing"
	"time"

	"github.com/mailwire/imapflow/imapwire"
)

func TestBuildSearchSimple(t *testing.T) {
	query := SearchQuery{{Key: "subject", Value: "hello"}, {Key: "unseen"}}
	req := BuildSearch(query, SearchOptions{})
	if req.Command != "SEARCH" {
		t.Fatalf("Command = %q", req.Command)
	}
	want := []string{"SUBJECT", "hello", "UNSEEN"}
	if len(req.Attributes) != 3 {
		t.Fatalf("Attributes = %+v", req.Attributes)
	}
	for i, w := range want {
		if req.Attributes[i].Value != w {
			t.Fatalf("Attributes[%d] = %q, want %q", i, req.Attributes[i].Value, w)
		}
	}
}

func TestBuildSearchDateAndUID(t *testing.T) {
	query := SearchQuery{{Key: "since", Value: time.Date(2011, time.February, 3, 0, 0, 0, 0, time.UTC)}}
	req := BuildSearch(query, SearchOptions{ByUID: true})
	if req.Command != "UID SEARCH" {
		t.Fatalf("Command = %q", req.Command)
	}
	if req.Attributes[1].Value != "3-Feb-2011" {
		t.Fatalf("date = %q, want 3-Feb-2011", req.Attributes[1].Value)
	}
}

func TestBuildSearchUIDTermIsSequence(t *testing.T) {
	query := SearchQuery{{Key: "uid", Value: "1:*"}}
	req := BuildSearch(query, SearchOptions{})
	if req.Attributes[0].Value != "UID" {
		t.Fatalf("Attributes[0] = %q, want UID", req.Attributes[0].Value)
	}
	seq := req.Attributes[1]
	if seq.Kind != imapwire.KindSequence || seq.Value != "1:*" {
		t.Fatalf("Attributes[1] = %+v, want sequence(1:*)", seq)
	}
}

func TestBuildSearchNestedOr(t *testing.T) {
	query := SearchQuery{{Key: "or", Value: SearchQuery{{Key: "from", Value: "a"}, {Key: "from", Value: "b"}}}}
	req := BuildSearch(query, SearchOptions{})
	if req.Attributes[0].Value != "OR" {
		t.Fatalf("Attributes[0] = %q", req.Attributes[0].Value)
	}
	if len(req.Attributes) != 5 {
		t.Fatalf("Attributes = %+v", req.Attributes)
	}
}

func TestParseSearchDedupSorted(t *testing.T) {
	resp := &Response{Payload: map[string][]*imapwire.Response{
		"SEARCH": {
			mustParseOne(t, "* SEARCH 5 3 9"),
			mustParseOne(t, "* SEARCH 3 1"),
		},
	}}
	got := ParseSearch(resp)
	want := []uint64{1, 3, 5, 9}
	if len(got) != len(want) {
		t.Fatalf("got = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got = %v, want %v", got, want)
		}
	}
}

func TestParseSearchEmpty(t *testing.T) {
	resp := &Response{Payload: map[string][]*imapwire.Response{}}
	got := ParseSearch(resp)
	if len(got) != 0 {
		t.Fatalf("got = %v, want empty", got)
	}
}

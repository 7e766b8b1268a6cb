package imapwire

import (
	"strings"
	"testing"
)

func TestReadResponseTagged(t *testing.T) {
	cases := []struct {
		name       string
		line       string
		wantTag    string
		wantName   string
		wantCode   string
		wantHuman  string
		wantNArgs  int
	}{
		{
			name:      "plain ok",
			line:      "a1 OK LOGIN completed\r\n",
			wantTag:   "a1",
			wantName:  "OK",
			wantHuman: "LOGIN completed",
		},
		{
			name:      "ok with capability code",
			line:      "a2 OK [CAPABILITY IMAP4rev1 IDLE] LOGIN completed\r\n",
			wantTag:   "a2",
			wantName:  "OK",
			wantCode:  "CAPABILITY",
			wantHuman: "LOGIN completed",
			wantNArgs: 2,
		},
		{
			name:      "tagged no with code",
			line:      "a3 NO [ALREADYEXISTS] Mailbox already exists\r\n",
			wantTag:   "a3",
			wantName:  "NO",
			wantCode:  "ALREADYEXISTS",
			wantHuman: "Mailbox already exists",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDecoder(strings.NewReader(tc.line))
			resp, err := d.ReadResponse()
			if err != nil {
				t.Fatalf("ReadResponse() error = %v", err)
			}
			if resp.Tag != tc.wantTag || resp.Name != tc.wantName {
				t.Fatalf("got tag=%q name=%q, want tag=%q name=%q", resp.Tag, resp.Name, tc.wantTag, tc.wantName)
			}
			if resp.Code != tc.wantCode {
				t.Fatalf("got code=%q, want %q", resp.Code, tc.wantCode)
			}
			if resp.HumanReadable != tc.wantHuman {
				t.Fatalf("got human=%q, want %q", resp.HumanReadable, tc.wantHuman)
			}
			if len(resp.CodeArgs) != tc.wantNArgs {
				t.Fatalf("got %d code args, want %d", len(resp.CodeArgs), tc.wantNArgs)
			}
		})
	}
}

func TestReadResponseUntaggedCounted(t *testing.T) {
	d := NewDecoder(strings.NewReader("* 123 EXISTS\r\n"))
	resp, err := d.ReadResponse()
	if err != nil {
		t.Fatalf("ReadResponse() error = %v", err)
	}
	if resp.Nr == nil || *resp.Nr != 123 {
		t.Fatalf("got nr=%v, want 123", resp.Nr)
	}
	if resp.Name != "EXISTS" {
		t.Fatalf("got name=%q, want EXISTS", resp.Name)
	}
}

func TestReadResponseFetchList(t *testing.T) {
	d := NewDecoder(strings.NewReader("* 5 FETCH (FLAGS (\\Seen) MODSEQ (4))\r\n"))
	resp, err := d.ReadResponse()
	if err != nil {
		t.Fatalf("ReadResponse() error = %v", err)
	}
	if resp.Nr == nil || *resp.Nr != 5 {
		t.Fatalf("got nr=%v, want 5", resp.Nr)
	}
	if len(resp.Attributes) != 1 || resp.Attributes[0].Kind != KindList {
		t.Fatalf("expected a single list attribute, got %+v", resp.Attributes)
	}
	pairs := resp.Attributes[0].List
	if len(pairs) != 4 {
		t.Fatalf("got %d pair items, want 4", len(pairs))
	}
	if pairs[0].Value != "FLAGS" || pairs[2].Value != "MODSEQ" {
		t.Fatalf("unexpected pair keys: %+v", pairs)
	}
}

func TestReadResponseLiteral(t *testing.T) {
	raw := "* 2 FETCH (BODY[TEXT] {13}\r\nHello world\r\n)\r\n"
	d := NewDecoder(strings.NewReader(raw))
	resp, err := d.ReadResponse()
	if err != nil {
		t.Fatalf("ReadResponse() error = %v", err)
	}
	pairs := resp.Attributes[0].List
	if len(pairs) != 2 {
		t.Fatalf("got %d items, want 2", len(pairs))
	}
	if pairs[0].Value != "BODY" || len(pairs[0].Section) != 1 || pairs[0].Section[0].Value != "TEXT" {
		t.Fatalf("unexpected key attribute: %+v", pairs[0])
	}
	if pairs[1].Kind != KindString || pairs[1].Value != "Hello world\r\n" {
		t.Fatalf("unexpected literal value: %+v", pairs[1])
	}
}

func TestParseSyntheticAttributes(t *testing.T) {
	attr, err := ParseSyntheticAttributes("MODSEQ (1234567)")
	if err != nil {
		t.Fatalf("ParseSyntheticAttributes() error = %v", err)
	}
	if attr.Kind != KindList || len(attr.List) != 2 {
		t.Fatalf("got %+v, want a two-element list", attr)
	}
	if attr.List[0].Value != "MODSEQ" {
		t.Fatalf("got first item %+v, want atom MODSEQ", attr.List[0])
	}

	section, err := ParseSyntheticAttributes("body[header.fields (date in-reply-to)]")
	if err != nil {
		t.Fatalf("ParseSyntheticAttributes() error = %v", err)
	}
	if section.Kind != KindAtom || len(section.Section) != 2 {
		t.Fatalf("got %+v, want an atom with a 2-element section", section)
	}
}

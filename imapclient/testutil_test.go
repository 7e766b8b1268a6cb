package imapclient

import (
	"strings"
	"testing"

	"github.com/mailwire/imapflow/imapwire"
)

// mustParseOne decodes a single raw response line (without the trailing
// CRLF) for use as test fixture data.
func mustParseOne(t *testing.T, line string) *imapwire.Response {
	t.Helper()
	d := imapwire.NewDecoder(strings.NewReader(line + "\r\n"))
	resp, err := d.ReadResponse()
	if err != nil {
		t.Fatalf("parse %q: %v", line, err)
	}
	return resp
}

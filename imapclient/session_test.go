package imapclient

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/mailwire/imapflow/imapsocket"
)

// fakeServer drives one side of a net.Pipe like a minimal IMAP server:
// it reads tagged command lines and replies with whatever script says for
// the command's first word, falling back to a bare OK completion.
type fakeServer struct {
	conn   net.Conn
	script map[string][]string
}

func newFakeServer(conn net.Conn, script map[string][]string) *fakeServer {
	return &fakeServer{conn: conn, script: script}
}

func (f *fakeServer) run(t *testing.T) {
	t.Helper()
	f.conn.Write([]byte("* OK IMAP4rev1 ready\r\n"))
	scanner := bufio.NewScanner(f.conn)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		tag, cmd := fields[0], strings.ToUpper(fields[1])
		lines, ok := f.script[cmd]
		if !ok {
			f.conn.Write([]byte(tag + " OK " + cmd + " completed\r\n"))
			continue
		}
		for _, l := range lines {
			f.conn.Write([]byte(strings.ReplaceAll(l, "$TAG", tag) + "\r\n"))
		}
	}
}

func newTestSession(t *testing.T, script map[string][]string) (*Session, net.Conn) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	go newFakeServer(serverConn, script).run(t)

	s := New(Options{
		Addr: "test",
		Auth: AuthOptions{User: "alice", Pass: "secret"},
	})
	s.dial = func(ctx context.Context, addr string, opts imapsocket.Options) (*imapsocket.Socket, error) {
		return imapsocket.New(clientConn), nil
	}
	return s, serverConn
}

func TestSessionConnectAuthenticates(t *testing.T) {
	script := map[string][]string{
		"CAPABILITY": {"* CAPABILITY IMAP4rev1", "$TAG OK CAPABILITY completed"},
		"LOGIN":      {"$TAG OK [CAPABILITY IMAP4rev1 UIDPLUS] LOGIN completed"},
	}
	s, _ := newTestSession(t, script)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Connect(ctx); err != nil {
		t.Fatalf("Connect error = %v", err)
	}
	defer s.Close(ctx)
	if !s.Authenticated() {
		t.Fatalf("Authenticated() = false, want true")
	}
	if !s.HasCapability(CapUIDPlus) {
		t.Fatalf("expected UIDPLUS to have been refreshed from the LOGIN tagged OK code")
	}
}

func TestSessionSelectAndFetch(t *testing.T) {
	script := map[string][]string{
		"CAPABILITY": {"* CAPABILITY IMAP4rev1", "$TAG OK CAPABILITY completed"},
		"LOGIN":      {"$TAG OK [CAPABILITY IMAP4rev1] LOGIN completed"},
		"SELECT": {
			"* 3 EXISTS",
			"* FLAGS (\\Seen \\Deleted)",
			"* OK [UIDVALIDITY 100] UIDs valid",
			"$TAG OK [READ-WRITE] SELECT completed",
		},
		"FETCH": {
			`* 1 FETCH (UID 10 FLAGS (\Seen))`,
			"$TAG OK FETCH completed",
		},
	}
	s, _ := newTestSession(t, script)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Connect(ctx); err != nil {
		t.Fatalf("Connect error = %v", err)
	}

	mb, err := s.Select(ctx, "INBOX", SelectOptions{})
	if err != nil {
		t.Fatalf("Select error = %v", err)
	}
	if mb.Exists != 3 || mb.UIDValidity != 100 {
		t.Fatalf("mb = %+v", mb)
	}
	if path, ok := s.SelectedMailbox(); !ok || path != "INBOX" {
		t.Fatalf("SelectedMailbox = %q, %v", path, ok)
	}

	msgs, err := s.Fetch(ctx, "1", []string{"uid", "flags"}, FetchOptions{})
	if err != nil {
		t.Fatalf("Fetch error = %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("msgs = %+v", msgs)
	}
	uid, _ := msgs[0].Get("uid")
	if uid.(uint64) != 10 {
		t.Fatalf("uid = %v, want 10", uid)
	}
}

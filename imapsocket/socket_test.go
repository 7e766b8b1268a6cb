package imapsocket

import (
	"net"
	"testing"
	"time"

	"github.com/mailwire/imapflow/imapwire"
)

func TestSocketReadGreetingFiresOnReady(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		server.Write([]byte("* OK IMAP4rev1 Service Ready\r\n"))
	}()

	sock := New(client)
	readyFired := make(chan *imapwire.Response, 1)
	sock.OnReady = func(resp *imapwire.Response) { readyFired <- resp }

	resp, err := sock.ReadGreeting()
	if err != nil {
		t.Fatalf("ReadGreeting() error = %v", err)
	}
	if resp.Name != "OK" {
		t.Fatalf("got name %q, want OK", resp.Name)
	}
	select {
	case <-readyFired:
	case <-time.After(time.Second):
		t.Fatal("OnReady did not fire")
	}
}

func TestSocketWriteDoneWritesExactBytes(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	sock := New(client)

	done := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 64)
		n, _ := server.Read(buf)
		done <- buf[:n]
	}()

	if err := sock.WriteDone(); err != nil {
		t.Fatalf("WriteDone() error = %v", err)
	}

	select {
	case got := <-done:
		want := "DONE\r\n"
		if string(got) != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for DONE bytes")
	}
}

func TestSocketOnIdleFiresAfterSend(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	sock := New(client)
	idleFired := make(chan struct{}, 1)
	sock.OnIdle = func() { idleFired <- struct{}{} }

	go func() {
		buf := make([]byte, 64)
		server.Read(buf)
	}()

	if err := sock.Send([]byte("a1 NOOP\r\n")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	select {
	case <-idleFired:
	case <-time.After(time.Second):
		t.Fatal("OnIdle did not fire after Send drained")
	}
}

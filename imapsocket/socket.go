// Package imapsocket implements the raw TCP/TLS transport the protocol
// core is layered over (§6 "Socket"): connect, write raw command bytes,
// read response lines through the wire codec, and signal readiness,
// errors, closure, and write-queue drain back to the owning session.
package imapsocket

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mailwire/imapflow/imapwire"
)

// doneBytes is the raw IDLE-termination sequence, written directly to the
// socket bypassing the command encoder (§4.C, §6).
var doneBytes = []byte{0x44, 0x4F, 0x4E, 0x45, 0x0D, 0x0A}

// Options configures a Dial.
type Options struct {
	Secure      bool
	TLSConfig   *tls.Config
	DialTimeout time.Duration
}

// Socket wraps a single TCP or TLS connection to an IMAP server. It owns
// no protocol state; it only moves bytes and demultiplexes the handful of
// connection-lifecycle events the session cares about.
type Socket struct {
	conn net.Conn
	dec  *imapwire.Decoder

	writeMu  sync.Mutex
	inFlight int32

	closeOnce sync.Once
	closed    chan struct{}

	// OnReady fires once the server greeting has been read and parsed.
	OnReady func(greeting *imapwire.Response)
	// OnError fires on any unrecoverable transport error.
	OnError func(error)
	// OnClose fires exactly once, for any reason the connection ends.
	OnClose func()
	// OnIdle fires whenever the write queue has drained to empty; the
	// session decides whether that also means "no command in flight".
	OnIdle func()
}

// Dial connects to addr and returns a Socket before the greeting has been
// read; the caller must call ReadGreeting to receive the greeting and
// fire OnReady.
func Dial(ctx context.Context, addr string, opts Options) (*Socket, error) {
	dialer := &net.Dialer{}
	if opts.DialTimeout > 0 {
		dialer.Timeout = opts.DialTimeout
	}

	var conn net.Conn
	var err error
	if opts.Secure {
		tlsConfig := opts.TLSConfig
		if tlsConfig == nil {
			tlsConfig = &tls.Config{}
		}
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, tlsConfig)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("imapsocket: dial %s: %w", addr, err)
	}
	return New(conn), nil
}

// New wraps an already-established connection (used by Dial, and directly
// by tests against net.Pipe).
func New(conn net.Conn) *Socket {
	return &Socket{
		conn:   conn,
		dec:    imapwire.NewDecoder(conn),
		closed: make(chan struct{}),
	}
}

// StartTLS replaces the underlying connection with a TLS client
// connection wrapping the same transport, for servers negotiated via
// STARTTLS rather than implicit TLS. The caller must have already sent
// and received the STARTTLS command/response pair over the plaintext
// socket before calling this.
func (s *Socket) StartTLS(cfg *tls.Config) error {
	if cfg == nil {
		cfg = &tls.Config{}
	}
	tlsConn := tls.Client(s.conn, cfg)
	if err := tlsConn.Handshake(); err != nil {
		return fmt.Errorf("imapsocket: TLS handshake: %w", err)
	}
	s.conn = tlsConn
	s.dec = imapwire.NewDecoder(tlsConn)
	return nil
}

// ReadGreeting reads the server's initial greeting line and fires OnReady.
func (s *Socket) ReadGreeting() (*imapwire.Response, error) {
	resp, err := s.ReadResponse()
	if err != nil {
		return nil, err
	}
	if s.OnReady != nil {
		s.OnReady(resp)
	}
	return resp, nil
}

// ReadResponse blocks for the next parsed response line. Callers run this
// in a loop (the session's read loop) until it returns an error, at which
// point the connection is considered closed.
func (s *Socket) ReadResponse() (*imapwire.Response, error) {
	resp, err := s.dec.ReadResponse()
	if err != nil {
		if err != io.EOF && s.OnError != nil {
			s.OnError(fmt.Errorf("imapsocket: read: %w", err))
		}
		s.fireClose()
		return nil, err
	}
	return resp, nil
}

// Send writes raw bytes to the connection. It is used both for encoded
// commands and for the IDLE-break DONE fast path (§4.C), which must be
// written as a single buffer bypassing the encoder.
func (s *Socket) Send(data []byte) error {
	atomic.AddInt32(&s.inFlight, 1)
	defer func() {
		if atomic.AddInt32(&s.inFlight, -1) == 0 && s.OnIdle != nil {
			s.OnIdle()
		}
	}()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.conn.Write(data); err != nil {
		if s.OnError != nil {
			s.OnError(fmt.Errorf("imapsocket: write: %w", err))
		}
		return err
	}
	return nil
}

// WriteDone writes the literal "DONE\r\n" bytes directly to the socket.
func (s *Socket) WriteDone() error {
	return s.Send(doneBytes)
}

// Destroy forcibly closes the connection without waiting for a clean
// LOGOUT exchange.
func (s *Socket) Destroy() error {
	err := s.conn.Close()
	s.fireClose()
	return err
}

func (s *Socket) fireClose() {
	s.closeOnce.Do(func() {
		close(s.closed)
		if s.OnClose != nil {
			s.OnClose()
		}
	})
}

// RemoteAddr reports the peer address, for logging.
func (s *Socket) RemoteAddr() net.Addr { return s.conn.RemoteAddr() }

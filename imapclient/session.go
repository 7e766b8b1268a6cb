package imapclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/mailwire/imapflow/imapsocket"
	"github.com/mailwire/imapflow/imapwire"
)

// AuthOptions selects a login mechanism: plain LOGIN when User/Pass are
// set, AUTHENTICATE XOAUTH2 when XOAuth2Token is set and the server
// advertises AUTH=XOAUTH2 (§4.D.12).
type AuthOptions struct {
	User         string
	Pass         string
	XOAuth2Token string
}

// Options configures a new Session.
type Options struct {
	Addr      string
	Secure    bool
	TLSConfig *tls.Config

	Auth AuthOptions
	// ID is sent via the ID command right after CAPABILITY, before LOGIN,
	// if the server advertises the ID capability. Nil skips it.
	ID map[string]string

	ConnectionTimeout time.Duration
	IdleTimeout       time.Duration
	NoopTimeout       time.Duration

	Logger Logger
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.ConnectionTimeout == 0 {
		out.ConnectionTimeout = TimeoutConnection
	}
	if out.IdleTimeout == 0 {
		out.IdleTimeout = TimeoutIdle
	}
	if out.NoopTimeout == 0 {
		out.NoopTimeout = TimeoutNoop
	}
	if out.Logger == nil {
		out.Logger = nopLogger{}
	}
	return out
}

// Session is a single IMAP connection's protocol state machine (§3, §4.A).
// It is the only component that holds mutable session state; the
// pipeline, idle manager, and demultiplexer below operate on fields of
// this struct directly.
type Session struct {
	id      string
	options Options
	logger  Logger

	sock *imapsocket.Socket
	// dial is overridden in tests to connect over an in-memory pipe
	// instead of a real TCP socket.
	dial func(ctx context.Context, addr string, opts imapsocket.Options) (*imapsocket.Socket, error)

	mu              sync.Mutex
	state           State
	capability      *CapabilitySet
	serverID        ServerID
	hasServerID     bool
	selectedPath    string
	hasSelected     bool
	idleState       IdleState
	idleGeneration  uint64

	capSF singleflight.Group

	// pipeline state: exactly one foreground command may be in flight.
	execSem    chan struct{}
	activeMu   sync.Mutex
	activeTag  string
	activeCmd  string
	activeAcc  map[string]bool
	activeBuf  map[string][]*imapwire.Response
	activeDone chan *imapwire.Response
	activeOpts *ExecOptions

	idleTimer       *time.Timer
	connectionTimer *time.Timer

	// background idle/NOOP keep-alive (§4.C)
	idleMu          sync.Mutex
	idleRunning     bool
	idleBreakCh     chan struct{}
	idleBreakClosed bool

	tagMu sync.Mutex
	tagN  uint64

	closeOnce sync.Once
	closed    chan struct{}

	// Observer slots (§4.A). OnError is nil by default; while it is unset,
	// errors passed to fireError are dropped. Handshake errors are still
	// returned to the caller by Connect.
	OnLog           func(kind string, payload interface{})
	OnClose         func()
	OnError         func(err error)
	OnAuth          func()
	OnUpdate        func(kind string, value interface{})
	OnSelectMailbox func(path string, info *Mailbox)
	OnCloseMailbox  func(path string)
}

// New constructs a Session. It performs no I/O; call Connect to dial.
func New(options Options) *Session {
	opts := options.withDefaults()
	s := &Session{
		id:         uuid.NewString(),
		options:    opts,
		logger:     opts.Logger,
		state:      StateConnecting,
		capability: newCapabilitySet(nil),
		execSem:    make(chan struct{}, 1),
		closed:     make(chan struct{}),
		dial:       imapsocket.Dial,
	}
	s.execSem <- struct{}{}
	return s
}

// ID returns the session's process-lifetime identifier, used for log
// correlation.
func (s *Session) ID() string { return s.id }

func (s *Session) log(kind string, payload interface{}) {
	if s.OnLog != nil {
		s.OnLog(kind, payload)
	}
}

func (s *Session) fireError(err error) {
	if s.OnError != nil {
		s.OnError(err)
	}
}

func (s *Session) setState(next State) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	var closedPath string
	closedMailbox := false
	if prev == StateSelected && next != StateSelected {
		closedPath = s.selectedPath
		closedMailbox = true
		s.hasSelected = false
		s.selectedPath = ""
	}
	s.mu.Unlock()

	s.log("session", fmt.Sprintf("%s -> %s", prev, next))
	if closedMailbox && s.OnCloseMailbox != nil {
		s.OnCloseMailbox(closedPath)
	}
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Authenticated reports whether state >= AUTHENTICATED.
func (s *Session) Authenticated() bool {
	return s.State() >= StateAuthenticated
}

// SelectedMailbox returns the currently selected mailbox path, if any.
func (s *Session) SelectedMailbox() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedPath, s.hasSelected
}

// HasCapability reports whether atom (case-insensitive) was advertised by
// the last capability update.
func (s *Session) HasCapability(atom string) bool {
	return s.capability.Has(atom)
}

// Capabilities returns a snapshot of the advertised capability atoms.
func (s *Session) Capabilities() []string {
	return s.capability.List()
}

func (s *Session) enterSelected(path string, info *Mailbox) {
	s.mu.Lock()
	prevPath := s.selectedPath
	wasSelected := s.hasSelected
	s.state = StateSelected
	s.selectedPath = path
	s.hasSelected = true
	s.mu.Unlock()

	if wasSelected && prevPath != path && s.OnCloseMailbox != nil {
		s.OnCloseMailbox(prevPath)
	}
	if s.OnSelectMailbox != nil {
		s.OnSelectMailbox(path, info)
	}
}

// Connect dials the server, waits for the greeting, and runs the
// capability/ID/login handshake (§4.A "Connect sequence"). It blocks
// until the session reaches AUTHENTICATED or the handshake fails.
func (s *Session) Connect(ctx context.Context) error {
	s.setState(StateConnecting)

	greetingCh := make(chan struct{})
	s.connectionTimer = time.AfterFunc(s.options.ConnectionTimeout, func() {
		select {
		case <-greetingCh:
			return
		default:
		}
		s.fireError(ErrTimeout)
		if s.sock != nil {
			s.sock.Destroy()
		}
	})

	sock, err := s.dial(ctx, s.options.Addr, imapsocket.Options{
		Secure:    s.options.Secure,
		TLSConfig: s.options.TLSConfig,
	})
	if err != nil {
		s.connectionTimer.Stop()
		return fmt.Errorf("imapclient: connect: %w", err)
	}
	s.sock = sock
	sock.OnError = s.fireError
	sock.OnClose = s.handleSocketClose
	sock.OnIdle = s.maybeEnterIdle

	greeting, err := sock.ReadGreeting()
	close(greetingCh)
	s.connectionTimer.Stop()
	if err != nil {
		return fmt.Errorf("imapclient: greeting: %w", err)
	}
	s.log("session", "greeting received")

	if greeting.Name == "PREAUTH" {
		s.setState(StateAuthenticated)
	} else {
		s.setState(StateNotAuthenticated)
	}

	go s.readLoop()

	if s.State() != StateAuthenticated {
		if _, err := s.UpdateCapability(ctx, false); err != nil {
			s.fireError(err)
			s.Close(ctx)
			return err
		}
		if s.options.ID != nil && s.HasCapability(CapID) {
			if _, err := s.UpdateID(ctx, s.options.ID); err != nil {
				s.fireError(err)
				s.Close(ctx)
				return err
			}
		}
		if err := s.login(ctx, s.options.Auth); err != nil {
			s.fireError(err)
			s.Close(ctx)
			return err
		}
	}

	s.startIdleLoop()

	if s.OnAuth != nil {
		s.OnAuth()
	}
	return nil
}

// Close issues LOGOUT and tears the connection down. It returns once the
// LOGOUT command completes (successfully or not — either way is
// non-fatal to Close itself).
func (s *Session) Close(ctx context.Context) error {
	s.setState(StateLogout)
	if s.sock == nil {
		return nil
	}
	_, err := s.Exec(ctx, Bare("LOGOUT"), nil, nil)
	s.sock.Destroy()
	return err
}

func (s *Session) handleSocketClose() {
	s.closeOnce.Do(func() {
		close(s.closed)
		if s.idleTimer != nil {
			s.idleTimer.Stop()
		}
		if s.connectionTimer != nil {
			s.connectionTimer.Stop()
		}
		s.stopIdleLoop()
		if s.OnClose != nil {
			s.OnClose()
		}
	})
}

// readLoop owns the socket's single reader and is the only goroutine that
// calls sock.ReadResponse. It runs until the connection closes.
func (s *Session) readLoop() {
	for {
		resp, err := s.sock.ReadResponse()
		if err != nil {
			return
		}
		s.dispatch(resp)
	}
}

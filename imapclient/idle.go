package imapclient

import (
	"context"
	"time"

	"github.com/mailwire/imapflow/imapwire"
)

// startIdleLoop launches the background keep-alive goroutine once, right
// after a successful login (§4.A, §4.C). It runs for the life of the
// connection, alternating between real IDLE and NOOP polling depending on
// what the server advertised.
func (s *Session) startIdleLoop() {
	s.idleMu.Lock()
	if s.idleRunning {
		s.idleMu.Unlock()
		return
	}
	s.idleRunning = true
	s.idleMu.Unlock()

	go s.runIdleLoop()
}

func (s *Session) stopIdleLoop() {
	s.idleMu.Lock()
	s.idleRunning = false
	s.idleMu.Unlock()
	s.requestIdleBreak()
}

func (s *Session) runIdleLoop() {
	for {
		select {
		case <-s.closed:
			return
		default:
		}
		if s.HasCapability(CapIdle) {
			s.runIdleCycle()
		} else {
			s.runNoopCycle()
		}
	}
}

// maybeEnterIdle is wired as the socket's OnIdle hook (every time the write
// queue drains to zero). The background loop above already drives entry
// into IDLE/NOOP on its own schedule; this is only a log hook for callers
// instrumenting write-queue drains.
func (s *Session) maybeEnterIdle() {
	s.log("idle", "write queue drained")
}

// breakIdle asks any in-progress real IDLE to end immediately. It does not
// block: the caller (Exec) blocks naturally on acquiring execSem, which the
// idle cycle holds until it has finished sending DONE and consuming the
// tagged completion.
func (s *Session) breakIdle() {
	s.requestIdleBreak()
}

func (s *Session) requestIdleBreak() {
	s.idleMu.Lock()
	defer s.idleMu.Unlock()
	if s.idleBreakCh != nil && !s.idleBreakClosed {
		close(s.idleBreakCh)
		s.idleBreakClosed = true
	}
}

// runIdleCycle issues one IDLE/DONE round trip (§4.C). It holds execSem for
// its entire duration so that Exec cannot interleave a foreground command
// with an open server-side IDLE.
func (s *Session) runIdleCycle() {
	select {
	case <-s.execSem:
	case <-s.closed:
		return
	}
	defer func() { s.execSem <- struct{}{} }()

	breakCh := make(chan struct{})
	s.idleMu.Lock()
	s.idleBreakCh = breakCh
	s.idleBreakClosed = false
	s.idleMu.Unlock()
	defer func() {
		s.idleMu.Lock()
		s.idleBreakCh = nil
		s.idleMu.Unlock()
	}()

	contCh := make(chan struct{}, 1)
	done := make(chan *imapwire.Response, 1)
	tag := s.nextTag()

	s.activeMu.Lock()
	s.activeTag = tag
	s.activeCmd = "IDLE"
	s.activeAcc = nil
	s.activeBuf = make(map[string][]*imapwire.Response)
	s.activeDone = done
	s.activeOpts = &ExecOptions{OnPlusTagged: func(*imapwire.Response) ([]byte, error) {
		select {
		case contCh <- struct{}{}:
		default:
		}
		return nil, nil
	}}
	s.activeMu.Unlock()

	if err := s.sock.Send(imapwire.EncodeCommand(tag, imapwire.Command{Name: "IDLE"})); err != nil {
		s.clearActive()
		return
	}

	select {
	case <-contCh:
	case <-done:
		// Server rejected IDLE outright (NO/BAD); nothing to break.
		s.clearActive()
		return
	case <-s.closed:
		return
	case <-time.After(30 * time.Second):
		s.clearActive()
		s.fireError(ErrTimeout)
		return
	}

	s.setIdleState(IdleActive)
	defer s.setIdleState(IdleNone)

	timer := time.NewTimer(s.options.IdleTimeout)
	defer timer.Stop()

	select {
	case <-breakCh:
	case <-timer.C:
	case <-s.closed:
		return
	}

	s.sock.WriteDone()

	select {
	case <-done:
	case <-s.closed:
	}
}

// runNoopCycle keeps a non-IDLE-capable connection alive with periodic
// NOOP, so the server's own idle timeout never fires (§4.C, §6).
func (s *Session) runNoopCycle() {
	select {
	case <-time.After(s.options.NoopTimeout):
	case <-s.closed:
		return
	}

	select {
	case <-s.closed:
		return
	default:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.Exec(ctx, Bare("NOOP"), nil, nil)
}

func (s *Session) setIdleState(st IdleState) {
	s.mu.Lock()
	s.idleState = st
	s.mu.Unlock()
}

// IdleStateNow reports the current background keep-alive mode.
func (s *Session) IdleStateNow() IdleState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idleState
}

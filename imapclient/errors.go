package imapclient

import (
	"errors"
	"fmt"
)

// ErrTimeout is reported via OnError when the greeting is not received
// within TimeoutConnection; fatal to the session (§7).
var ErrTimeout = errors.New("imapclient: connection timeout waiting for greeting")

// ErrIdleBroken is a sentinel the idle manager can surface to log sinks;
// never a fatal error.
var ErrIdleBroken = errors.New("imapclient: idle broken for foreground command")

// ProtocolError wraps a tagged NO/BAD completion (§4.B.3, §7). Message is
// the response's human-readable text (or "Error" if absent); Code is the
// response code atom, if the server sent one.
type ProtocolError struct {
	Command string
	Status  string // "NO" or "BAD"
	Code    string
	Message string
}

func (e *ProtocolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("imapclient: %s %s [%s] %s", e.Command, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("imapclient: %s %s %s", e.Command, e.Status, e.Message)
}

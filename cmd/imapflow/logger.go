package main

import (
	"os"

	charmlog "github.com/charmbracelet/log"

	"github.com/mailwire/imapflow/imapclient"
)

// chromaLogger implements imapclient.Logger on top of charmbracelet/log,
// the same role DefaultLogger plays in the teacher's cmd/imap.go, with a
// real structured-logging dependency in place of log.Printf.
type chromaLogger struct {
	l *charmlog.Logger
}

func newChromaLogger() *chromaLogger {
	l := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "imapflow",
	})
	return &chromaLogger{l: l}
}

func (c *chromaLogger) Info(format string, args ...interface{})  { c.l.Infof(format, args...) }
func (c *chromaLogger) Debug(format string, args ...interface{}) { c.l.Debugf(format, args...) }
func (c *chromaLogger) Error(format string, args ...interface{}) { c.l.Errorf(format, args...) }

var _ imapclient.Logger = (*chromaLogger)(nil)

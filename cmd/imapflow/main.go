package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mailwire/imapflow/imapclient"
)

var (
	cfgPath    string
	flagHost   string
	flagPort   int
	flagUser   string
	flagPass   string
	flagSecure bool
	statusAddr string
	mongoURI   string
)

func main() {
	root := &cobra.Command{
		Use:   "imapflow",
		Short: "Demo client driving the imapclient session core",
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a JSON config file")
	root.PersistentFlags().StringVar(&flagHost, "host", "", "IMAP server host (overrides config)")
	root.PersistentFlags().IntVar(&flagPort, "port", 0, "IMAP server port (overrides config)")
	root.PersistentFlags().StringVar(&flagUser, "user", "", "login user (overrides config)")
	root.PersistentFlags().StringVar(&flagPass, "pass", "", "login password (overrides config)")
	root.PersistentFlags().BoolVar(&flagSecure, "secure", false, "dial with implicit TLS")
	root.PersistentFlags().StringVar(&statusAddr, "status-addr", "", "serve a read-only JSON status endpoint at this address")
	root.PersistentFlags().StringVar(&mongoURI, "audit-mongo-uri", "", "Mongo URI to mirror session log events to (overrides config)")

	root.AddCommand(
		newConnectCmd(),
		newFetchCmd(),
		newSearchCmd(),
		newIdleCmd(),
		newBenchCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadEffectiveConfig() (*Config, error) {
	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	if flagHost != "" {
		cfg.IMAP.Host = flagHost
	}
	if flagPort != 0 {
		cfg.IMAP.Port = flagPort
	}
	if flagUser != "" {
		cfg.Auth.User = flagUser
	}
	if flagPass != "" {
		cfg.Auth.Pass = flagPass
	}
	if flagSecure {
		cfg.IMAP.Secure = true
	}
	if statusAddr != "" {
		cfg.StatusAddr = statusAddr
	}
	if mongoURI != "" {
		cfg.Mongo.URI = mongoURI
	}
	return cfg, nil
}

// dialSession builds and connects a Session from the effective config,
// wiring the chromaLogger, an optional Mongo audit sink, and an optional
// status HTTP server. Callers get back a connected, authenticated
// session and a teardown func.
func dialSession(ctx context.Context, cfg *Config) (*imapclient.Session, func(), error) {
	logger := newChromaLogger()

	s := imapclient.New(imapclient.Options{
		Addr:              fmt.Sprintf("%s:%d", cfg.IMAP.Host, cfg.IMAP.Port),
		Secure:            cfg.IMAP.Secure,
		TLSConfig:         &tls.Config{ServerName: cfg.IMAP.Host},
		ConnectionTimeout: cfg.IMAP.ConnectionTimeout,
		IdleTimeout:       cfg.IMAP.IdleTimeout,
		Auth: imapclient.AuthOptions{
			User:         cfg.Auth.User,
			Pass:         cfg.Auth.Pass,
			XOAuth2Token: cfg.Auth.XOAuth2Token,
		},
		Logger: logger,
	})
	s.OnLog = func(kind string, payload interface{}) {
		logger.Debug("%s: %v", kind, payload)
	}
	s.OnError = func(err error) {
		logger.Error("%v", err)
	}

	var teardown []func()
	if cfg.Mongo.URI != "" {
		sink, err := newAuditSink(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection, s.ID(), logger)
		if err != nil {
			logger.Error("audit sink disabled: %v", err)
		} else {
			prevOnLog := s.OnLog
			s.OnLog = func(kind string, payload interface{}) {
				prevOnLog(kind, payload)
				sink.record(kind, payload)
			}
		}
	}

	if cfg.StatusAddr != "" {
		router := newStatusRouter(s)
		srv := &http.Server{Addr: cfg.StatusAddr, Handler: router}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("status server: %v", err)
			}
		}()
		teardown = append(teardown, func() {
			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutCtx)
		})
	}

	if err := s.Connect(ctx); err != nil {
		return nil, nil, err
	}

	return s, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.Close(closeCtx)
		for _, fn := range teardown {
			fn()
		}
	}, nil
}

// waitForSignal blocks until SIGINT/SIGTERM, for long-running subcommands.
func waitForSignal(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
}

package main

import (
	"encoding/json"
	"os"
	"time"
)

// Config holds the demo binary's connection and auth settings, loaded
// from an optional JSON file and overridable by CLI flags. Mirrors the
// shape of the teacher's cmd.Config: a struct with json tags and a
// DefaultConfig constructor, retargeted at client fields.
type Config struct {
	IMAP struct {
		Host              string        `json:"host" default:"localhost"`
		Port              int           `json:"port" default:"993"`
		Secure            bool          `json:"secure" default:"true"`
		ConnectionTimeout time.Duration `json:"connectionTimeout" default:"90s"`
		IdleTimeout       time.Duration `json:"idleTimeout" default:"180s"`
	} `json:"imap"`
	Auth struct {
		User         string `json:"user"`
		Pass         string `json:"pass"`
		XOAuth2Token string `json:"xoauth2Token"`
	} `json:"auth"`
	Mongo struct {
		URI        string `json:"uri" default:"mongodb://localhost:27017"`
		Database   string `json:"database" default:"imapflow"`
		Collection string `json:"collection" default:"session_events"`
	} `json:"mongo"`
	StatusAddr string `json:"statusAddr"`
}

// DefaultConfig returns a Config populated with the struct tag defaults.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.IMAP.Host = "localhost"
	cfg.IMAP.Port = 993
	cfg.IMAP.Secure = true
	cfg.IMAP.ConnectionTimeout = 90 * time.Second
	cfg.IMAP.IdleTimeout = 180 * time.Second
	cfg.Mongo.URI = "mongodb://localhost:27017"
	cfg.Mongo.Database = "imapflow"
	cfg.Mongo.Collection = "session_events"
	return cfg
}

// LoadConfig reads a JSON config file on top of DefaultConfig. A missing
// path is not an error; the defaults are used as-is.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

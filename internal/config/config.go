// Package config holds the configuration of the ttvdrops binary.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"ttvdrops/internal/db"
	"ttvdrops/internal/notify"
	"ttvdrops/internal/telemetry"
)

const DEFAULT_NAME = "config.json5"

type InboxConfig struct {
	// disabled when empty
	Dir          string `json:"dir"`
	ProcessedDir string `json:"processed_dir"`
	FailedDir    string `json:"failed_dir"`
	// robfig/cron syntax, descriptors like @every 1m work too
	Schedule string `json:"schedule"`
}

type HttpConfig struct {
	Addr string `json:"addr"`
	// requests to /api/ingest must carry it as a bearer token when set
	AccessToken string `json:"access_token"`
}

type Config struct {
	Database  db.Config         `json:"database"`
	Telemetry telemetry.Config  `json:"telemetry"`
	DataDir   string            `json:"data_dir"`
	Archive   bool              `json:"archive"`
	Inbox     InboxConfig       `json:"inbox"`
	Http      HttpConfig        `json:"http"`
	Smtp      notify.SmtpConfig `json:"smtp"`
	Verbose   bool              `json:"verbose"`
}

// ArchiveDir is where raw live payloads are kept.
func (c Config) ArchiveDir() string {
	return filepath.Join(c.DataDir, "json")
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Database.File == "" && c.Database.Url == "" {
		c.Database.File = filepath.Join(c.DataDir, "ttvdrops.db")
	}
	if c.Http.Addr == "" {
		c.Http.Addr = "127.0.0.1:8000"
	}
	if c.Inbox.Schedule == "" {
		c.Inbox.Schedule = "@every 1m"
	}
	if c.Inbox.Dir != "" {
		if c.Inbox.ProcessedDir == "" {
			c.Inbox.ProcessedDir = filepath.Join(c.Inbox.Dir, "processed")
		}
		if c.Inbox.FailedDir == "" {
			c.Inbox.FailedDir = filepath.Join(c.Inbox.Dir, "failed")
		}
	}
	if c.Smtp.Port == 0 {
		c.Smtp.Port = 587
	}
}

// Load reads the config at path, or searches the working directory and its parents for
// config.json5 when path is empty. A missing file yields the defaults.
func Load(path string) (Config, error) {
	var (
		cfg Config
		err error
	)
	if path == "" {
		cfg, err = ReadRecursively[Config](DEFAULT_NAME)
		if errors.Is(err, os.ErrNotExist) {
			err = nil
		}
	} else {
		cfg, err = Read[Config](path)
	}
	if err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

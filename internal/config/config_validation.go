// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keyport Authors

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Built-in defaults. The agent must come up with zero configuration on a
// fresh machine, so every field has a workable fallback.
const (
	DefaultListenAddress  = "127.0.0.1:8700"
	DefaultRemoteBaseURL  = "https://api.keyport.app"
	DefaultRequestTimeout = 30 * time.Second
	DefaultPollInterval   = 30 * time.Minute
	DefaultStreamBackoff  = 10 * time.Second
	DefaultVersion        = "dev"
)

// applyDefaults fills every unset field with its built-in default. The data
// directory is resolved against the OS per-user config dir and created if
// missing, since nearly all other defaults hang off it.
func (cfg *StructuredConfig) applyDefaults() error {
	if cfg.App.DataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("%w: cannot resolve user config dir: %v", ErrInvalidAppConfigs, err)
		}
		cfg.App.DataDir = filepath.Join(base, "keyport-agent")
	}
	if err := os.MkdirAll(cfg.App.DataDir, 0o700); err != nil {
		return fmt.Errorf("%w: cannot create data dir %s: %v", ErrInvalidAppConfigs, cfg.App.DataDir, err)
	}

	if cfg.App.Version == "" {
		cfg.App.Version = DefaultVersion
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = filepath.Join(cfg.App.DataDir, "agent.db")
	}
	if cfg.Server.HTTPAddress == "" {
		cfg.Server.HTTPAddress = DefaultListenAddress
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Remote.BaseURL == "" {
		cfg.Remote.BaseURL = DefaultRemoteBaseURL
	}
	if cfg.Remote.RequestTimeout == 0 {
		cfg.Remote.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Bundle.PollInterval == 0 {
		cfg.Bundle.PollInterval = DefaultPollInterval
	}
	if cfg.Bundle.StreamBackoff == 0 {
		cfg.Bundle.StreamBackoff = DefaultStreamBackoff
	}

	return nil
}

// validate checks that the final merged [StructuredConfig] satisfies all
// agent invariants before it is used at startup.
func (cfg *StructuredConfig) validate() error {
	if !strings.Contains(cfg.Server.HTTPAddress, ":") {
		return fmt.Errorf("%w: listen address %q is not host:port", ErrInvalidServerConfigs, cfg.Server.HTTPAddress)
	}

	remote, err := url.Parse(cfg.Remote.BaseURL)
	if err != nil || remote.Scheme == "" || remote.Host == "" {
		return fmt.Errorf("%w: base URL %q is not an absolute URL", ErrInvalidRemoteConfigs, cfg.Remote.BaseURL)
	}

	return nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keyport Authors

package config

import (
	"os"
	"time"
)

// StructuredConfig is the top-level configuration container for the desktop
// agent. It aggregates all sub-configurations and is populated by merging
// values from environment variables, command-line flags, and an optional
// JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings: the local data directory and
	// the agent version string.
	App App `envPrefix:"APP_"`

	// Storage holds the local database settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds the local HTTP listener settings.
	Server Server `envPrefix:"SERVER_"`

	// Remote holds the remote backend settings.
	Remote Remote `envPrefix:"REMOTE_"`

	// Bundle holds the UI bundle synchronization settings.
	Bundle Bundle `envPrefix:"BUNDLE_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// DataDir is the per-user directory holding all of the agent's
	// durable state: the database file, license cache, mode file,
	// device id, bundle manifest, the bundle directory and the log.
	// Env: APP_DATA_DIR
	DataDir string `env:"DATA_DIR"`

	// Version is the semantic version string of the running agent,
	// reported by the health endpoint.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Storage holds local database settings.
type Storage struct {
	// DSN is the SQLite data source name. Defaults to agent.db inside
	// the data directory.
	// Env: STORAGE_DSN
	DSN string `env:"DSN"`
}

// Server holds the local HTTP listener settings.
type Server struct {
	// HTTPAddress is the TCP address the agent listens on, in
	// "host:port" format. The agent binds to loopback by default; it is
	// a local companion process, not a network service.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds local request handling. Proxied streaming
	// calls are exempt.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Remote holds settings for the remote backend service.
type Remote struct {
	// BaseURL is the origin of the remote service, e.g.
	// "https://api.keyport.app".
	// Env: REMOTE_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// RequestTimeout bounds individual remote calls (license, manifest,
	// chat). Streamed calls through the proxy are exempt.
	// Env: REMOTE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Bundle holds UI bundle synchronization settings.
type Bundle struct {
	// PollInterval is the fallback manifest poll period.
	// Env: BUNDLE_POLL_INTERVAL
	PollInterval time.Duration `env:"POLL_INTERVAL"`

	// StreamBackoff is the fixed delay between reconnect attempts of
	// the update-notification stream.
	// Env: BUNDLE_STREAM_BACKOFF
	StreamBackoff time.Duration `env:"STREAM_BACKOFF"`
}

// GetStructuredConfig loads, merges, and validates the agent configuration
// from all available sources in the following priority order (last source
// wins for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(os.Args[1:]).
		withJSON().
		build()
}

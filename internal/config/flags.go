package config

import (
	"errors"
	"flag"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// parseFlags parses all configuration flags from args.
//
// Flags:
//
//	-a agent listen address in format [host]:[port]
//	-d database DSN
//	-data-dir local data directory
//	-remote-url remote backend base URL
//	-poll-interval bundle manifest poll interval (e.g., "30m")
//	-stream-backoff bundle stream reconnect backoff (e.g., "10s")
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-version agent version string
//	-c/-config json file path with configs
func parseFlags(args []string) (*StructuredConfig, error) {
	var listenAddress NetAddress
	var databaseDSN string
	var dataDir string
	var remoteURL string
	var pollInterval time.Duration
	var streamBackoff time.Duration
	var requestTimeout time.Duration
	var version string
	var jsonConfigPath string

	flags := flag.NewFlagSet("agent", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	flags.Var(&listenAddress, "a", "Net address host:port")
	flags.StringVar(&databaseDSN, "d", "", "Database DSN")
	flags.StringVar(&dataDir, "data-dir", "", "Local data directory")
	flags.StringVar(&remoteURL, "remote-url", "", "Remote backend base URL")
	flags.DurationVar(&pollInterval, "poll-interval", 0, "Bundle poll interval (e.g., 30m)")
	flags.DurationVar(&streamBackoff, "stream-backoff", 0, "Bundle stream reconnect backoff (e.g., 10s)")
	flags.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flags.StringVar(&version, "version", "", "Agent version string")
	flags.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flags.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	return &StructuredConfig{
		App: App{
			DataDir: dataDir,
			Version: version,
		},
		Storage: Storage{
			DSN: databaseDSN,
		},
		Server: Server{
			HTTPAddress:    listenAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Remote: Remote{
			BaseURL:        remoteURL,
			RequestTimeout: requestTimeout,
		},
		Bundle: Bundle{
			PollInterval:  pollInterval,
			StreamBackoff: streamBackoff,
		},
		JSONFilePath: jsonConfigPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns the empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}

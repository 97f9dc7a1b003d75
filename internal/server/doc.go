// Package server runs the agent's local HTTP listener.
//
// It owns startup, signal handling, and graceful shutdown. The agent serves
// a single transport on loopback; the UI, the CLI, and any local tooling all
// talk to the same listener.
package server

package models

// Mode is the agent's persisted routing flag. In offline mode,
// remote-dependent calls short-circuit with a synthetic explanation instead
// of attempting the network.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

// Valid reports whether m is one of the two defined modes.
func (m Mode) Valid() bool {
	return m == ModeOnline || m == ModeOffline
}

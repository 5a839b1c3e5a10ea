package core

// Frame is a raw signaling payload, already encoded for the wire.
type Frame []byte

// Conn abstracts one physical realtime connection to an endpoint.
// Owned by the adapter; the adapter must Close() it. The registry
// replaces a Conn on reconnect and is responsible for closing the one
// it evicts.
type Conn interface {
	// ID identifies the physical connection, not the endpoint's
	// profile. Two registrations from the same profile have
	// different conn ids.
	ID() string
	TrySend(Frame) error
	// Connected reports transport-level liveness. Used by host
	// arbitration to judge whether the current host is actually dead.
	Connected() bool
	Close()
}

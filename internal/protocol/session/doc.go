// Package session runs the Zusi client exchanges over a caller-owned stream.
//
// Ownership boundary:
// - HELLO / ACK_HELLO handshake
// - NEEDED_DATA / ACK_NEEDED_DATA subscription
// - exchange state tracking (sending, awaiting, complete, failed)
// - Client: dial with bounded retry, per-exchange deadlines, data receive
//
// Exchanges are synchronous and never retried; every failure is returned
// to the caller.
package session

// Package ipc exposes the daemon over JSON-RPC Unix sockets and ships the
// matching client used by the CLI.
//
// It owns socket lifecycle management and the request/response DTOs for
// every library operation, review action, and diagnostic the CLI offers.
// The server delegates to the shared api service so socket callers and the
// HTTP API observe identical semantics; the client wraps each call in a
// typed method so CLI commands fail fast when the daemon is offline.
//
// Reuse these types when adding new RPC endpoints to keep the protocol
// stable and compatible with existing command implementations.
package ipc

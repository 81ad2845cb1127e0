// Package daemon coordinates the long-running gloss process and system
// integration points.
//
// It wires configuration, the lecture store, the workflow manager, and the
// inbox watcher into a single lifecycle with flock-based locking to prevent
// multiple instances. The daemon also serves the read-only HTTP API and
// reports a combined status snapshot covering the lock, log path, and
// workflow state.
//
// Keep orchestration logic here: review mechanics live in their own packages
// while the daemon focuses on startup, shutdown, and high level coordination.
// All lecture operations delegate to the api service so the IPC surface and
// the HTTP API share one implementation.
package daemon

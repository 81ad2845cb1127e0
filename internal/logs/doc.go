// Package logs provides file tailing and offset helpers shared by the CLI and
// daemon diagnostics.
//
// It reads log files with bounded memory, supports negative offsets for
// "tail last N lines" reads, and powers follow-mode updates for
// `gloss logs -f`. Callers supply context deadlines so background polling
// shuts down cleanly when the CLI exits.
//
// The daemon's RPC log endpoint and the offline CLI fallback share the same
// entry point, so offsets returned by one caller are valid for the next.
package logs

// Package api defines wire-format types and converters for the IPC and HTTP
// API layer, plus the Service facade shared by the daemon and the
// direct-store CLI path. It translates library models into
// transport-friendly DTOs that consumers can render without coupling to
// internal types.
//
// # Key Types
//
// Lecture: transport representation of a lecture with lifecycle status,
// deck reference, review progress, and heartbeat.
//
// WorkflowStatus: daemon running state, lecture stats, stage health, and last
// lecture.
//
// Service: reference-resolving operations over the library store, review
// engine, and notifier. The IPC server delegates to it when the daemon is
// up; the CLI calls it directly when the daemon is down.
//
// # Converters
//
// FromLecture: library.Lecture -> Lecture with RFC3339 timestamps and
// heartbeat formatting.
//
// FromStatusSummary: workflow.StatusSummary -> WorkflowStatus.
//
// StageHealthSlice: deterministic ordering of stage health map.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Internal enums (library.Status, notes.Kind)
// are exposed as lowercase strings with display labels precomputed, so
// consumers need no kind table. Timestamps use RFC3339 with milliseconds.
//
// Service operations take references rather than raw IDs: an all-digit
// reference is an ID, anything else matches by slug (courses also fall back
// to exact name). Non-numeric lecture references use course/lecture slug
// paths so lecture slugs only need to be unique within their course.
package api

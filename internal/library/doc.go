// Package library persists courses, lectures, notes, review cards, and
// follow-up exchanges in SQLite.
//
// The store owns the lecture lifecycle (draft, finalized, reviewing,
// reviewed) and enforces it at the database layer: note mutations are
// rejected inside a transaction once a lecture leaves draft, and status
// transitions are compare-and-set so concurrent callers cannot skip states.
// All timestamps are stored as UTC RFC3339Nano strings.
package library

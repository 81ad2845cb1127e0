// Package workflow advances lectures through their review run.
//
// The Manager polls the library for lectures in reviewing, claims each one
// by stamping its heartbeat, and feeds it into the review stage handler
// while a ticker keeps the heartbeat fresh so status output can tell a live
// run from a stalled one. A completed run marks the lecture reviewed; a
// failed run returns it to finalized with the error message kept for
// display. Review milestones are pushed through the notifications service.
//
// A single lane is enough because provider requests already fan out inside
// the stage handler; lectures are reviewed one at a time in queue order.
package workflow

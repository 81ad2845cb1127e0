package stage

import (
	"context"

	"gloss/internal/library"
)

// Handler describes the contract the workflow manager needs from each stage.
// Prepare runs before the lecture is handed to Execute and must fail fast;
// Execute performs the work and updates the lecture through the store.
type Handler interface {
	Prepare(context.Context, *library.Lecture) error
	Execute(context.Context, *library.Lecture) error
	HealthCheck(context.Context) Health
}

package library

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound marks lookups that matched no row. Callers wrap it with the
// entity and identifier.
var ErrNotFound = errors.New("not found")

// InvalidStateError reports an operation attempted while a lecture is in a
// status that forbids it. The state is never changed by the failing call.
type InvalidStateError struct {
	Op     string
	Status Status
	Want   []Status
}

func (e *InvalidStateError) Error() string {
	wants := make([]string, len(e.Want))
	for i, status := range e.Want {
		wants[i] = string(status)
	}
	return fmt.Sprintf("%s requires status %s, lecture is %s", e.Op, strings.Join(wants, " or "), e.Status)
}

// EmptyInputError reports a required text field that was blank after
// trimming.
type EmptyInputError struct {
	Field string
}

func (e *EmptyInputError) Error() string {
	return e.Field + " must not be empty"
}

// PreconditionError reports a start-review check that failed before any
// provider request was dispatched.
type PreconditionError struct {
	Reason string
	Err    error
}

func (e *PreconditionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

package llm

import (
	"errors"
)

// Error classification shapes the message recorded on a failed card; it
// never triggers a retry. The user decides whether to regenerate.

// TransientError marks a failure that a later attempt could clear, such as
// rate limiting or a network fault.
type TransientError struct {
	err error
}

func (e *TransientError) Error() string {
	return e.err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.err
}

// NewTransientError wraps an error as transient.
func NewTransientError(err error) error {
	return &TransientError{err: err}
}

// FatalError marks a failure a retry cannot clear, such as bad credentials
// or a rejected request.
type FatalError struct {
	err error
}

func (e *FatalError) Error() string {
	return e.err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.err
}

// NewFatalError wraps an error as fatal.
func NewFatalError(err error) error {
	return &FatalError{err: err}
}

// IsTransient reports whether a later attempt at the same request could
// plausibly succeed.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

// IsFatal reports whether retrying the same request is pointless.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

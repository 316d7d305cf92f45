// Package decode parses Queue/Blob XML and Table JSON response bodies:
// a uniform error-extraction branch shared by every operation, plus
// per-operation success decoders (spec.md §4.5).
package decode

import "fmt"

// ServiceError is the uniform shape every non-2xx response decodes into.
// Code() implements retry.Coded so the retry engine can classify it
// without importing this package.
type ServiceError struct {
	ErrorCode  string
	Message    string
	Detail     string
	StatusCode int
	Payload    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%sError: %s (status %d)", e.ErrorCode, e.Message, e.StatusCode)
}

// Code returns the bare service code ("InternalError", "ServerBusy", ...),
// the value the retry engine's transient-code set matches against.
func (e *ServiceError) Code() string { return e.ErrorCode }

// UnexpectedStatusError is raised when a response was 2xx but not the exact
// status code the calling operation expected. Never retried.
type UnexpectedStatusError struct {
	Operation string
	Got       int
	Want      []int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d (want one of %v)", e.Operation, e.Got, e.Want)
}

// ExpectStatus fails with *UnexpectedStatusError unless got is one of want.
func ExpectStatus(operation string, got int, want ...int) error {
	for _, w := range want {
		if got == w {
			return nil
		}
	}
	return &UnexpectedStatusError{Operation: operation, Got: got, Want: want}
}

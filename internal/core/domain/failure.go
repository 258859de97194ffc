package domain

import (
	"errors"
	"fmt"
)

type FailureKind string

const (
	FailureTransport     FailureKind = "transport_error"
	FailureRequestFailed FailureKind = "request_failed"
)

// Failure is the uniform error produced by every remote store call.
type Failure struct {
	Kind   FailureKind
	Op     string
	Status int   // set for FailureRequestFailed
	Cause  error // set for FailureTransport
}

func NewTransportFailure(op string, cause error) *Failure {
	return &Failure{Kind: FailureTransport, Op: op, Cause: cause}
}

func NewRequestFailure(op string, status int) *Failure {
	return &Failure{Kind: FailureRequestFailed, Op: op, Status: status}
}

func (f *Failure) Error() string {
	if f.Kind == FailureRequestFailed {
		return fmt.Sprintf("%s: request failed with status %d", f.Op, f.Status)
	}
	return fmt.Sprintf("%s: transport error: %v", f.Op, f.Cause)
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// IsRequestFailed reports whether err carries a non-success response and
// returns its status code.
func IsRequestFailed(err error) (int, bool) {
	var f *Failure
	if errors.As(err, &f) && f.Kind == FailureRequestFailed {
		return f.Status, true
	}
	return 0, false
}

func IsTransportError(err error) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == FailureTransport
}

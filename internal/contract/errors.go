package contract

import (
	"errors"
	"fmt"
)

// ErrLoadFailed matches every LoadError through errors.Is.
var ErrLoadFailed = errors.New("load failed")

// Failure classifies why a load failed. It is only used for logging; both
// classes are shown to the user the same way.
type Failure string

const (
	TransportFailure   Failure = "transport"
	ApplicationFailure Failure = "application"
)

// LoadError is returned by fetchers when a request cannot be used.
type LoadError struct {
	Op      string
	Failure Failure
	Err     error
}

// NewTransportError wraps a network, status or decoding failure.
func NewTransportError(op string, err error) *LoadError {
	return &LoadError{Op: op, Failure: TransportFailure, Err: err}
}

// NewApplicationError wraps the message of a truthy error field.
func NewApplicationError(op, msg string) *LoadError {
	return &LoadError{Op: op, Failure: ApplicationFailure, Err: errors.New(msg)}
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load failed: %v", e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrLoadFailed) hold for every LoadError.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoadFailed
}

// Message returns the human-readable part shown in the failure row.
func (e *LoadError) Message() string {
	if e.Err == nil {
		return "unknown error"
	}
	return e.Err.Error()
}

// FailureOf returns the failure class of err, or "" when err is not a LoadError.
func FailureOf(err error) Failure {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Failure
	}
	return ""
}

// FailureMessage returns the text a sink should display for err.
func FailureMessage(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Message()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

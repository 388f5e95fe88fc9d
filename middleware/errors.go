package middleware

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrNilRequest is returned when a nil request enters the pipeline.
var ErrNilRequest = errors.New("middleware: nil request")

// ErrorCode classifies pipeline errors.
type ErrorCode int

const (
	// ErrCodeTimeout indicates the round trip timed out or was cancelled.
	ErrCodeTimeout ErrorCode = iota
	// ErrCodeConnection indicates a transport failure (refused, DNS, TLS, etc).
	ErrCodeConnection
	// ErrCodeMiddleware indicates a failure raised by a pipeline stage.
	ErrCodeMiddleware
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeConnection:
		return "connection"
	case ErrCodeMiddleware:
		return "middleware"
	default:
		return "unknown"
	}
}

// Error is a classified pipeline error.
type Error struct {
	// Code classifies the error.
	Code ErrorCode
	// Stage names the stage that raised the error (empty for transport errors).
	Stage string
	// Retryable indicates whether the request may be safely re-issued.
	Retryable bool
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("middleware: %s (%s): %v", e.Code, e.Stage, e.Err)
	}
	return fmt.Sprintf("middleware: %s: %v", e.Code, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewTransportError classifies an error returned by http.Client.Do.
func NewTransportError(ctx context.Context, err error) *Error {
	var ne net.Error
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &Error{Code: ErrCodeTimeout, Retryable: true, Err: err}
	}
	return &Error{Code: ErrCodeConnection, Retryable: true, Err: err}
}

// NewMiddlewareError wraps an error raised by the named stage.
func NewMiddlewareError(stage string, err error) *Error {
	return &Error{Code: ErrCodeMiddleware, Stage: stage, Err: err}
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeTimeout
}

// IsConnection checks if an error is a connection error.
func IsConnection(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeConnection
}

// IsMiddleware checks if an error was raised by a pipeline stage.
func IsMiddleware(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeMiddleware
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}

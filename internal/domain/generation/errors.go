package generation

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies a generation failure and decides its retry behavior.
type ErrorKind string

const (
	// Retryable kinds
	ErrKindTruncated           ErrorKind = "TRUNCATED"            // Stream ended mid-structure
	ErrKindTransportTimeout    ErrorKind = "TRANSPORT_TIMEOUT"    // No chunk within the per-unit bound
	ErrKindUpstreamUnavailable ErrorKind = "UPSTREAM_UNAVAILABLE" // LLM call could not start

	// Non-retryable kinds
	ErrKindMalformed          ErrorKind = "MALFORMED"           // Structurally invalid JSON or schema mismatch
	ErrKindCancelled          ErrorKind = "CANCELLED"           // Client disconnected
	ErrKindPersistenceFailure ErrorKind = "PERSISTENCE_FAILURE" // Save-as-you-go write failed
)

// IsRetryable returns true if a unit with this failure kind may be restarted.
func (k ErrorKind) IsRetryable() bool {
	return k == ErrKindTruncated || k == ErrKindTransportTimeout || k == ErrKindUpstreamUnavailable
}

// String returns the string representation of the kind.
func (k ErrorKind) String() string {
	return string(k)
}

// UnitError represents a failure while generating one unit.
type UnitError struct {
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	UnitIndex int       `json:"unit_index"`
	Attempts  int       `json:"attempts,omitempty"`
	Cause     error     `json:"-"`
}

// Error implements the error interface.
func (e *UnitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *UnitError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns true if the unit can be restarted from scratch.
func (e *UnitError) IsRetryable() bool {
	return e.Kind.IsRetryable()
}

// NewUnitError creates a unit error with the given kind.
func NewUnitError(kind ErrorKind, message string) *UnitError {
	return &UnitError{
		Kind:    kind,
		Message: message,
	}
}

// WithCause adds an underlying cause to the error.
func (e *UnitError) WithCause(cause error) *UnitError {
	e.Cause = cause
	return e
}

// WithUnit records the unit index on the error.
func (e *UnitError) WithUnit(index int) *UnitError {
	e.UnitIndex = index
	return e
}

// Classify maps an arbitrary error to a UnitError.
//
// Context deadline expiry counts as a transport timeout (the unit restarts under
// the retry policy); explicit cancellation is terminal. Network-level failures
// before the first chunk are upstream unavailability.
func Classify(err error) *UnitError {
	if err == nil {
		return nil
	}

	var unitErr *UnitError
	if errors.As(err, &unitErr) {
		return unitErr
	}

	switch {
	case errors.Is(err, context.Canceled):
		return NewUnitError(ErrKindCancelled, "generation cancelled").WithCause(err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewUnitError(ErrKindTransportTimeout, "no data within unit timeout").WithCause(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return NewUnitError(ErrKindTransportTimeout, "transport timed out").WithCause(err)
		}
		return NewUnitError(ErrKindUpstreamUnavailable, "upstream connection failed").WithCause(err)
	}

	return NewUnitError(ErrKindUpstreamUnavailable, "upstream request failed").WithCause(err)
}

// ParseError is returned by Finalize when the accumulated buffer does not form a
// complete, schema-valid document.
type ParseError struct {
	Kind    ErrorKind // ErrKindTruncated or ErrKindMalformed
	Message string
	Offset  int // Byte offset of the first invalid token, -1 when truncated
	Cause   error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// IsTruncated reports whether the buffer ended before the structure closed.
func (e *ParseError) IsTruncated() bool {
	return e.Kind == ErrKindTruncated
}

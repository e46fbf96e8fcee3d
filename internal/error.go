// Package internal holds the small cross-cutting helpers the rest of the
// driver shares: error wrapping/classification, a counting semaphore, and
// multi-error aggregation.
package internal

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a driver error for callers that need to branch on
// failure category rather than match error strings.
type Kind string

// The error kinds the driver ever returns, per the error taxonomy.
const (
	KindConnectionLost         Kind = "connection_lost"
	KindConnectionNotAvailable Kind = "connection_not_available"
	KindShutdownInProgress     Kind = "shutdown_in_progress"
	KindNoSuitableServer       Kind = "no_suitable_server"
	KindNoPrimary              Kind = "no_primary"
	KindDuplicateKey           Kind = "duplicate_key"
	KindCursorNotFound         Kind = "cursor_not_found"
	KindQueryFailure           Kind = "query_failure"
	KindShardConfigStale       Kind = "shard_config_stale"
	KindReplyValidation        Kind = "reply_validation"
	KindOperationTimedOut      Kind = "operation_timed_out"
	KindCancelled              Kind = "cancelled"
	KindFraming                Kind = "framing"
)

// WrappedError represents an error that carries a message of its own plus
// an optional inner cause, forming a chain RolledUpErrorMessage can walk.
type WrappedError interface {
	Message() string
	Inner() error
}

// DriverError is the concrete error type returned by every classified
// failure in the driver. Kind lets callers branch on failure category;
// the cause chain (via Unwrap) is preserved so errors.Is/As still work
// against whatever produced the original failure.
type DriverError struct {
	kind    Kind
	message string
	cause   error
}

// NewError classifies message under kind with no further cause.
func NewError(kind Kind, message string) *DriverError {
	return &DriverError{kind: kind, message: message}
}

// NewErrorf is NewError with a formatted message.
func NewErrorf(kind Kind, format string, args ...interface{}) *DriverError {
	return &DriverError{kind: kind, message: fmt.Sprintf(format, args...)}
}

// WrapAs classifies cause under kind, preserving cause as the chain's
// inner error.
func WrapAs(kind Kind, cause error, message string) *DriverError {
	return &DriverError{kind: kind, message: message, cause: errors.WithStack(cause)}
}

// WrapAsf is WrapAs with a formatted message.
func WrapAsf(kind Kind, cause error, format string, args ...interface{}) *DriverError {
	return &DriverError{kind: kind, message: fmt.Sprintf(format, args...), cause: errors.WithStack(cause)}
}

func (e *DriverError) Kind() Kind      { return e.kind }
func (e *DriverError) Message() string { return e.message }
func (e *DriverError) Inner() error    { return e.cause }
func (e *DriverError) Unwrap() error   { return e.cause }

func (e *DriverError) Error() string {
	return RolledUpErrorMessage(e)
}

// Is reports whether target is a *DriverError of the same Kind, so
// callers can write errors.Is(err, internal.NewError(internal.KindNoPrimary, "")).
func (e *DriverError) Is(target error) bool {
	other, ok := target.(*DriverError)
	return ok && other.kind == e.kind
}

// RolledUpErrorMessage flattens a WrappedError chain into one message,
// walking Inner() until it bottoms out at a plain error.
func RolledUpErrorMessage(err error) string {
	if wrapped, ok := err.(WrappedError); ok {
		if inner := wrapped.Inner(); inner != nil {
			return fmt.Sprintf("%s: %s", wrapped.Message(), RolledUpErrorMessage(inner))
		}
		return wrapped.Message()
	}
	return err.Error()
}

// WrapError wraps inner with message, preserving inner as the cause via
// github.com/pkg/errors so the stack trace at the wrap site is retained.
func WrapError(inner error, message string) error {
	return &wrappedError{message, errors.WithStack(inner)}
}

// WrapErrorf is WrapError with a formatted message.
func WrapErrorf(inner error, format string, args ...interface{}) error {
	return &wrappedError{fmt.Sprintf(format, args...), errors.WithStack(inner)}
}

type wrappedError struct {
	message string
	inner   error
}

func (e *wrappedError) Message() string { return e.message }
func (e *wrappedError) Error() string   { return RolledUpErrorMessage(e) }
func (e *wrappedError) Inner() error    { return e.inner }
func (e *wrappedError) Unwrap() error   { return e.inner }

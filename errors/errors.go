package errors

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

const (
	UnknownCode       = 500
	UnknownReason     = ""
	MetadataSeparator = ", "
	MetadataPrefix    = "metadata={"
	MetadataSuffix    = "}"
	CausePrefix       = "cause="
)

// Status represents the status information of an error: a coarse class code, a stable
// machine-readable reason, a human readable message and optional metadata.
type Status struct {
	Code     int               `json:"code,omitempty"`
	Reason   string            `json:"reason,omitempty"`
	Message  string            `json:"message,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Error represents a structured error containing code, reason, message, metadata and error chain
type Error struct {
	Status
	cause error
}

// Error returns a human-readable error message with optional error chain
func (e *Error) Error() string {
	var msg strings.Builder

	msg.WriteString("code=")
	msg.WriteString(strconv.Itoa(e.Code))
	if e.Reason != "" {
		msg.WriteString(MetadataSeparator)
		msg.WriteString("reason=")
		msg.WriteString(e.Reason)
	}
	msg.WriteString(MetadataSeparator)
	msg.WriteString("message=")
	msg.WriteString(e.Message)

	// Metadata keys are sorted so the message is stable across runs
	if len(e.Metadata) > 0 {
		msg.WriteString(MetadataSeparator)
		msg.WriteString(MetadataPrefix)
		for i, k := range slices.Sorted(maps.Keys(e.Metadata)) {
			if i > 0 {
				msg.WriteString(", ")
			}
			msg.WriteString(k)
			msg.WriteByte('=')
			msg.WriteString(e.Metadata[k])
		}
		msg.WriteString(MetadataSuffix)
	}

	if e.cause != nil {
		msg.WriteString(MetadataSeparator)
		msg.WriteString(CausePrefix)
		msg.WriteString(e.cause.Error())
	}

	return msg.String()
}

// Unwrap returns the cause of the error
func (e *Error) Unwrap() error {
	return e.cause
}

// WithMessage returns a copy of the error carrying a new formatted message.
// Code and reason are preserved, so errors.Is still matches the original.
func (e *Error) WithMessage(format string, args ...any) *Error {
	err := e.clone()
	err.Message = sprintf(format, args...)
	return err
}

// WithMetadata adds metadata to the error. Returns a new error instance to maintain immutability.
func (e *Error) WithMetadata(m map[string]string) *Error {
	if len(m) == 0 {
		return e
	}

	err := e.clone()
	if err.Metadata == nil {
		err.Metadata = make(map[string]string, len(m))
	}

	maps.Copy(err.Metadata, m)
	return err
}

// WithCause adds a cause to the error. Returns a new error instance to maintain immutability.
func (e *Error) WithCause(cause error) *Error {
	if cause == nil {
		return e
	}

	err := e.clone()
	err.cause = cause
	return err
}

// clone creates a shallow copy of the error while deep copying the metadata map
func (e *Error) clone() *Error {
	var metadata map[string]string
	if len(e.Metadata) > 0 {
		metadata = make(map[string]string, len(e.Metadata))
		maps.Copy(metadata, e.Metadata)
	}

	return &Error{
		Status: Status{
			Code:     e.Code,
			Reason:   e.Reason,
			Message:  e.Message,
			Metadata: metadata,
		},
		cause: e.cause,
	}
}

// Is reports whether err is an *Error of the same kind.
// Errors with a reason match on code and reason; errors without one fall back to code and message.
func (e *Error) Is(err error) bool {
	var ge *Error
	if !errors.As(err, &ge) {
		return false
	}
	if e.Code != ge.Code {
		return false
	}
	if e.Reason != "" || ge.Reason != "" {
		return e.Reason == ge.Reason
	}
	return e.Message == ge.Message
}

// GetCode returns the error code
func (e *Error) GetCode() int {
	return e.Code
}

// GetReason returns the error reason
func (e *Error) GetReason() string {
	return e.Reason
}

// GetMessage returns the error message
func (e *Error) GetMessage() string {
	return e.Message
}

// GetMetadata returns a copy of the metadata to prevent external modification
func (e *Error) GetMetadata() map[string]string {
	if len(e.Metadata) == 0 {
		return nil
	}

	result := make(map[string]string, len(e.Metadata))
	maps.Copy(result, e.Metadata)
	return result
}

// GetCause returns the underlying cause of the error
func (e *Error) GetCause() error {
	return e.cause
}

// New creates a new error with the given error code and formatted message
func New(code int, format string, args ...any) *Error {
	return &Error{
		Status: Status{
			Code:    code,
			Message: sprintf(format, args...),
		},
	}
}

// NewWithReason creates a new error with a stable reason
func NewWithReason(code int, reason, format string, args ...any) *Error {
	err := New(code, format, args...)
	err.Reason = reason
	return err
}

// NewWithMetadata creates a new error with metadata
func NewWithMetadata(code int, metadata map[string]string, format string, args ...any) *Error {
	err := New(code, format, args...)
	if len(metadata) > 0 {
		err.Metadata = make(map[string]string, len(metadata))
		maps.Copy(err.Metadata, metadata)
	}
	return err
}

// Wrap wraps an error with additional context while preserving the original error chain
// Returns nil if the input error is nil
func Wrap(err error, code int, format string, args ...any) *Error {
	if err == nil {
		return nil
	}

	newErr := New(code, format, args...)
	return newErr.WithCause(err)
}

// WrapWithMetadata wraps an error with metadata and additional context
// Returns nil if the input error is nil
func WrapWithMetadata(err error, code int, metadata map[string]string, format string, args ...any) *Error {
	if err == nil {
		return nil
	}

	newErr := NewWithMetadata(code, metadata, format, args...)
	return newErr.WithCause(err)
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

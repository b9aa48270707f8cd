// Package errors defines the error taxonomy shared by the envelope pipeline,
// the submission client and the CLI boundary.
package errors

import (
	stderrors "errors"
)

// Error is a classified failure of the create pipeline. Metadata carries
// the details the CLI prints next to the message: the YAML path that failed
// to resolve, or the HTTP status and body of a rejected submission.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code, so errors.Is(err, New(code, ""))
// tests the class of err.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New classifies a failure that has no underlying cause, such as a missing
// document marker.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithMetadata is New plus details, e.g. MetaPath for envelope shape errors.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

// Wrap classifies a lower-level error (I/O, YAML decoding, HTTP transport).
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func WrapWithMetadata(code Code, message string, metadata map[string]string, cause error) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata, Cause: cause}
}

// As finds the first domain error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the code of the first domain error in err's chain,
// CodeUnknown for foreign errors and the empty code for nil.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.Code
	}
	return CodeUnknown
}

// Meta returns a metadata value of the first domain error in err's chain.
func Meta(err error, key string) string {
	if e, ok := As(err); ok && e.Metadata != nil {
		return e.Metadata[key]
	}
	return ""
}

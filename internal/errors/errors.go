package errors

import "errors"

// Code identifies a structured error type used across the application.
type Code string

const (
	// Generic codes
	CodeUnknown Code = "unknown"

	// Version parsing
	CodeInvalidSegment Code = "invalid_segment"

	// Catalog fetch errors
	CodeHTTPStatus        Code = "http_status"
	CodeNotFound          Code = "not_found"
	CodeMalformedResponse Code = "malformed_response"
	CodeVersionNotFound   Code = "version_not_found"
	CodeNetwork           Code = "network"

	// Resolution and collaborators
	CodeUnsupportedPlatform Code = "unsupported_platform"
	CodeLaunchFailed        Code = "launch_failed"
	CodeConfigurationError  Code = "configuration_error"
)

// Error represents a structured error with a machine-readable code plus message.
type Error struct {
	Code    Code
	Message string
	Err     error
	// Status holds the HTTP status code for CodeHTTPStatus errors.
	Status int
}

// Error implements the error interface.
func (e Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

// Unwrap returns the wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// New wraps an error with a code/message.
func New(code Code, msg string, err error) Error {
	return Error{Code: code, Message: msg, Err: err}
}

// HTTPStatus builds a CodeHTTPStatus error for an unexpected response status.
func HTTPStatus(status int, msg string) Error {
	return Error{Code: CodeHTTPStatus, Message: msg, Status: status}
}

// CodeOf walks the error chain and returns the first structured code found.
func CodeOf(err error) Code {
	var structured Error
	if errors.As(err, &structured) {
		return structured.Code
	}
	return CodeUnknown
}

// IsCode reports whether the error (or its unwrap chain) matches the provided code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// StatusOf returns the HTTP status recorded on a CodeHTTPStatus error, or 0.
func StatusOf(err error) int {
	var structured Error
	if errors.As(err, &structured) {
		return structured.Status
	}
	return 0
}

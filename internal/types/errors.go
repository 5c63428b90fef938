package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for scanner errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// Database error codes
const (
	DB_OPEN_FAILED      ErrorCode = "DB_OPEN_FAILED"
	DB_MIGRATION_FAILED ErrorCode = "DB_MIGRATION_FAILED"
	DB_QUERY_FAILED     ErrorCode = "DB_QUERY_FAILED"
)

// Backend error codes
const (
	BACKEND_NOT_FOUND        ErrorCode = "BACKEND_NOT_FOUND"
	BACKEND_ALREADY_EXISTS   ErrorCode = "BACKEND_ALREADY_EXISTS"
	BACKEND_INVALID_INPUT    ErrorCode = "BACKEND_INVALID_INPUT"
	BACKEND_INIT_FAILED      ErrorCode = "BACKEND_INIT_FAILED"
	BACKEND_UNAUTHORIZED     ErrorCode = "BACKEND_UNAUTHORIZED"
	BACKEND_RATE_LIMITED     ErrorCode = "BACKEND_RATE_LIMITED"
	BACKEND_UNAVAILABLE      ErrorCode = "BACKEND_UNAVAILABLE"
	BACKEND_CALL_FAILED      ErrorCode = "BACKEND_CALL_FAILED"
	BACKEND_PARSE_FAILED     ErrorCode = "BACKEND_PARSE_FAILED"
	BACKEND_TIMEOUT          ErrorCode = "BACKEND_TIMEOUT"
	BACKEND_CONTEXT_CANCELED ErrorCode = "BACKEND_CONTEXT_CANCELED"
)

// Orchestration error codes
const (
	ORCH_NO_BACKENDS      ErrorCode = "ORCH_NO_BACKENDS"
	ORCH_ALL_FAILED       ErrorCode = "ORCH_ALL_FAILED"
	ORCH_UNKNOWN_STRATEGY ErrorCode = "ORCH_UNKNOWN_STRATEGY"
	ORCH_POOL_EXHAUSTED   ErrorCode = "ORCH_POOL_EXHAUSTED"
)

// Learning error codes
const (
	LEARN_RECORD_NOT_FOUND ErrorCode = "LEARN_RECORD_NOT_FOUND"
	LEARN_ARCHIVE_FAILED   ErrorCode = "LEARN_ARCHIVE_FAILED"
	LEARN_STORE_FAILED     ErrorCode = "LEARN_STORE_FAILED"
)

// Price feed error codes
const (
	FEED_LOOKUP_FAILED ErrorCode = "FEED_LOOKUP_FAILED"
	FEED_UNAVAILABLE   ErrorCode = "FEED_UNAVAILABLE"
)

// ScannerError represents a structured error with error code, message, and
// optional cause. It supports error wrapping and retryability hints for
// error handling logic.
type ScannerError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *ScannerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
func (e *ScannerError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
func (e *ScannerError) Is(target error) bool {
	var scanErr *ScannerError
	if errors.As(target, &scanErr) {
		return e.Code == scanErr.Code
	}
	return false
}

// NewError creates a new non-retryable ScannerError with the given code and message.
func NewError(code ErrorCode, message string) *ScannerError {
	return &ScannerError{
		Code:    code,
		Message: message,
	}
}

// NewRetryableError creates a new retryable ScannerError with the given code and
// message. Use this for transient errors that may succeed on retry.
func NewRetryableError(code ErrorCode, message string) *ScannerError {
	return &ScannerError{
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// WrapError creates a new non-retryable ScannerError that wraps an existing error.
func WrapError(code ErrorCode, message string, cause error) *ScannerError {
	return &ScannerError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapRetryableError creates a new retryable ScannerError that wraps an existing error.
func WrapRetryableError(code ErrorCode, message string, cause error) *ScannerError {
	return &ScannerError{
		Code:      code,
		Message:   message,
		Retryable: true,
		Cause:     cause,
	}
}

// CodeOf extracts the ErrorCode from an error chain.
// Returns an empty code if the chain contains no ScannerError.
func CodeOf(err error) ErrorCode {
	var scanErr *ScannerError
	if errors.As(err, &scanErr) {
		return scanErr.Code
	}
	return ""
}

// IsRetryable reports whether the error chain contains a retryable ScannerError.
func IsRetryable(err error) bool {
	var scanErr *ScannerError
	if errors.As(err, &scanErr) {
		return scanErr.Retryable
	}
	return false
}

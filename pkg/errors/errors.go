package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Target selection errors
	ErrUnknownTarget ErrorCode = "UNKNOWN_TARGET"
	ErrUnknownOutput ErrorCode = "UNKNOWN_OUTPUT"

	// Resolution/build errors
	ErrMissingTarget ErrorCode = "MISSING_TARGET"
	ErrOutputCycle   ErrorCode = "OUTPUT_CYCLE"
	ErrOutputRun     ErrorCode = "OUTPUT_RUN"
	ErrPreflight     ErrorCode = "PREFLIGHT"

	// FileSystem errors
	ErrFileNotFound  ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrFileCopy      ErrorCode = "FILE_COPY"
	ErrSelfCopy      ErrorCode = "SELF_COPY"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
	ErrDirCreate     ErrorCode = "DIR_CREATE"
	ErrPathEscape    ErrorCode = "PATH_ESCAPE"
)

// KibotError represents a structured error with code and details
type KibotError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *KibotError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *KibotError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *KibotError) Is(target error) bool {
	var targetErr *KibotError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new KibotError with the given code and message
func New(code ErrorCode, message string) *KibotError {
	return &KibotError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new KibotError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *KibotError {
	return &KibotError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a KibotError
func Wrap(err error, code ErrorCode, message string) *KibotError {
	if err == nil {
		return nil
	}
	return &KibotError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *KibotError {
	if err == nil {
		return nil
	}
	return &KibotError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *KibotError) WithDetail(key string, value interface{}) *KibotError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error or any of its causes has a specific code
func IsErrorCode(err error, code ErrorCode) bool {
	var kbErr *KibotError
	for errors.As(err, &kbErr) {
		if kbErr.Code == code {
			return true
		}
		err = kbErr.Wrapped
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a KibotError
func GetErrorCode(err error) ErrorCode {
	var kbErr *KibotError
	if errors.As(err, &kbErr) {
		return kbErr.Code
	}
	return ErrUnknown
}

// IsConfiguration reports whether the error is something the user can fix
// in the configuration, as opposed to an internal/build failure.
func IsConfiguration(err error) bool {
	switch GetErrorCode(err) {
	case ErrConfigLoad, ErrConfigParse, ErrConfigValid, ErrInvalidInput, ErrSelfCopy, ErrUnknownTarget:
		return true
	}
	return false
}

package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common errors
var (
	// Backend errors
	ErrRequestFailed   = errors.New("request failed")
	ErrMissingIdentity = errors.New("backend returned a record without an id")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Session errors
	ErrSessionClosed = errors.New("session closed")
)

// Student Errors
var (
	ErrStudentNotFound = errors.New("student not found")
	ErrEmailTaken      = errors.New("email already in use")
)

// Course Errors
var (
	ErrCourseNotFound = errors.New("course not found")
)

// RequestError is the uniform failure signal for a backend call that did not
// come back with a usable 2xx reply. Status is 0 when the request never got a
// response.
type RequestError struct {
	Method  string
	Path    string
	Status  int
	Message string
	Detail  string
	Err     error
}

// NewRequestError creates a RequestError for a non-successful response
func NewRequestError(method, path string, status int, message string) *RequestError {
	return &RequestError{
		Method:  method,
		Path:    path,
		Status:  status,
		Message: message,
	}
}

// Error implements error interface
func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status == 0 && e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

// Unwrap exposes the transport error, or ErrRequestFailed for status failures
func (e *RequestError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrRequestFailed
}

// Is lets errors.Is(err, ErrRequestFailed) match transport failures too
func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

// WithDetail attaches the backend response body
func (e *RequestError) WithDetail(detail string) *RequestError {
	e.Detail = strings.TrimSpace(detail)
	return e
}

// WithCause attaches the underlying transport error
func (e *RequestError) WithCause(err error) *RequestError {
	e.Err = err
	return e
}

// AsRequestError unwraps err into a RequestError if it carries one
func AsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}

// ValidationError collects form-level problems keyed by field name.
// It is produced before any network call is made.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates an empty ValidationError
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message for a field, keeping the first one
func (e *ValidationError) Add(field, message string) *ValidationError {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
	return e
}

// HasErrors reports whether any field failed
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Error implements error interface
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidationFailed.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

// Unwrap implements errors.Unwrap interface
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

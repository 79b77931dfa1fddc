package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code for each error type
type ErrorCode string

const (
	// General errors
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrCodeBadRequest ErrorCode = "BAD_REQUEST"
	ErrCodeConflict   ErrorCode = "CONFLICT"

	// Calculation errors
	ErrCodeValidation              ErrorCode = "VALIDATION_ERROR"
	ErrCodeUnmatchedReference      ErrorCode = "UNMATCHED_REFERENCE"
	ErrCodeCollaboratorUnavailable ErrorCode = "COLLABORATOR_UNAVAILABLE"

	// File processing errors
	ErrCodeInvalidFile       ErrorCode = "INVALID_FILE"
	ErrCodeFileTooLarge      ErrorCode = "FILE_TOO_LARGE"
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"

	// Database errors
	ErrCodeDatabaseError  ErrorCode = "DATABASE_ERROR"
	ErrCodeRecordNotFound ErrorCode = "RECORD_NOT_FOUND"

	// Queue errors
	ErrCodeQueueError ErrorCode = "QUEUE_ERROR"
)

// UnmatchedReferenceMessage is shown to the operator when a save is refused
// because the name did not resolve.
const UnmatchedReferenceMessage = "no matching reference entry; cannot save"

// AppError represents a structured application error
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Err        error                  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails adds additional context to the error
func (e *AppError) WithDetails(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Field returns the offending field of a validation error, if any.
func (e *AppError) Field() string {
	if e.Details == nil {
		return ""
	}
	f, _ := e.Details["field"].(string)
	return f
}

// New creates a new AppError
func New(code ErrorCode, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an existing error with AppError context
func Wrap(err error, code ErrorCode, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

// Common error constructors

func InternalWrap(err error, message string) *AppError {
	return Wrap(err, ErrCodeInternal, message, http.StatusInternalServerError)
}

func NotFound(message string) *AppError {
	return New(ErrCodeNotFound, message, http.StatusNotFound)
}

func BadRequest(message string) *AppError {
	return New(ErrCodeBadRequest, message, http.StatusBadRequest)
}

func Conflict(message string) *AppError {
	return New(ErrCodeConflict, message, http.StatusConflict)
}

// Calculation errors

// Validation reports a field-level problem; nothing is persisted.
func Validation(field, message string) *AppError {
	return New(ErrCodeValidation, message, http.StatusBadRequest).WithDetails("field", field)
}

// UnmatchedReference reports that name resolution found no master entry.
func UnmatchedReference(kind, name string) *AppError {
	return New(ErrCodeUnmatchedReference, UnmatchedReferenceMessage, http.StatusUnprocessableEntity).
		WithDetails("field", "resolved_name").
		WithDetails("kind", kind).
		WithDetails("name", name)
}

// CollaboratorUnavailable wraps a transport or storage failure of an
// external collaborator (master tables, hierarchy, persistence).
func CollaboratorUnavailable(err error, collaborator string) *AppError {
	return Wrap(err, ErrCodeCollaboratorUnavailable,
		fmt.Sprintf("%s is unavailable, please retry", collaborator),
		http.StatusServiceUnavailable).
		WithDetails("collaborator", collaborator)
}

// File processing errors

func InvalidFile(message string) *AppError {
	return New(ErrCodeInvalidFile, message, http.StatusBadRequest)
}

func FileTooLarge(maxSize int64) *AppError {
	return New(ErrCodeFileTooLarge,
		fmt.Sprintf("file size exceeds maximum allowed size of %d MB", maxSize),
		http.StatusBadRequest)
}

func UnsupportedFormat(format string) *AppError {
	return New(ErrCodeUnsupportedFormat,
		fmt.Sprintf("unsupported file format: %s", format),
		http.StatusBadRequest)
}

// Database errors

func DatabaseError(err error) *AppError {
	return Wrap(err, ErrCodeDatabaseError, "database operation failed", http.StatusInternalServerError)
}

func RecordNotFound(resource string) *AppError {
	return New(ErrCodeRecordNotFound,
		fmt.Sprintf("%s not found", resource),
		http.StatusNotFound)
}

// Queue errors

func QueueError(err error) *AppError {
	return Wrap(err, ErrCodeQueueError, "failed to enqueue task", http.StatusServiceUnavailable)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error chain
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := GetAppError(err)
	return ok && appErr.Code == code
}

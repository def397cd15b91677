package cancellation

import (
	"errors"
	"fmt"
)

// Error codes surfaced by the cancellation workflow.
const (
	CodeValidation          = "validationError"
	CodeNotFound            = "notFoundError"
	CodeAlreadyCancelled    = "alreadyCancelledError"
	CodeInvalidBookingState = "invalidBookingStateError"
	CodeUpload              = "uploadError"
	CodePersistence         = "persistenceError"
)

// WorkflowError is the typed error returned by every operation in this
// package. Handlers map its code onto an HTTP status.
type WorkflowError struct {
	Code    string
	Message string
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code, format string, args ...any) error {
	return &WorkflowError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func NewValidationError(format string, args ...any) error {
	return newError(CodeValidation, format, args...)
}

func NewNotFoundError(format string, args ...any) error {
	return newError(CodeNotFound, format, args...)
}

func NewAlreadyCancelledError(format string, args ...any) error {
	return newError(CodeAlreadyCancelled, format, args...)
}

func NewInvalidBookingStateError(format string, args ...any) error {
	return newError(CodeInvalidBookingState, format, args...)
}

func NewUploadError(format string, args ...any) error {
	return newError(CodeUpload, format, args...)
}

func NewPersistenceError(format string, args ...any) error {
	return newError(CodePersistence, format, args...)
}

// CodeOf extracts the workflow error code, or "" for foreign errors.
func CodeOf(err error) string {
	var we *WorkflowError
	if errors.As(err, &we) {
		return we.Code
	}
	return ""
}

func IsValidation(err error) bool       { return CodeOf(err) == CodeValidation }
func IsNotFound(err error) bool         { return CodeOf(err) == CodeNotFound }
func IsAlreadyCancelled(err error) bool { return CodeOf(err) == CodeAlreadyCancelled }
func IsUpload(err error) bool           { return CodeOf(err) == CodeUpload }
func IsPersistence(err error) bool      { return CodeOf(err) == CodePersistence }

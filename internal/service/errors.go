package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is; the API layer maps them to HTTP
// status codes.
var (
	// ErrNoActiveSession indicates the user has no study session in progress.
	// API layer should map this to HTTP 404 Not Found.
	ErrNoActiveSession = errors.New("no active study session")

	// ErrInvalidAnswer indicates an answer carried no usable grading input.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidAnswer = errors.New("answer must carry a grade, an outcome, a typed answer or correctness")

	// ErrPersistFailed indicates the last review state of the current word
	// could not be stored. The write has been requested again; the answer was
	// not applied. API layer should map this to HTTP 503 Service Unavailable.
	ErrPersistFailed = errors.New("review state could not be saved")

	// ErrInvalidImport indicates exported user data that cannot be imported.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidImport = errors.New("invalid user data")

	// ErrEmptyUserID indicates a request without a user.
	// API layer should map this to HTTP 400 Bad Request.
	ErrEmptyUserID = errors.New("user ID cannot be empty")

	// ErrInvalidTutorMessage indicates a tutor request with an unsupported
	// language or an empty or oversized message.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidTutorMessage = errors.New("invalid tutor message")
)

// ServiceError is a custom error type for service operation failures.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

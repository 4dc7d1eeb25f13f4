package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/domain/srs"
	"github.com/phrazzld/scry-words/internal/enrichment"
	"github.com/phrazzld/scry-words/internal/service"
	"github.com/phrazzld/scry-words/internal/session"
	"github.com/phrazzld/scry-words/internal/store"
	"github.com/phrazzld/scry-words/internal/tutor"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, service.ErrNoActiveSession):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, session.ErrNotIntro),
		errors.Is(err, session.ErrNotExercise):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, srs.ErrInvalidGrade),
		errors.Is(err, domain.ErrInvalidReviewOutcome),
		errors.Is(err, service.ErrInvalidAnswer),
		errors.Is(err, service.ErrInvalidImport),
		errors.Is(err, service.ErrEmptyUserID),
		errors.Is(err, service.ErrInvalidTutorMessage):
		return http.StatusBadRequest

	// Temporarily unavailable
	case errors.Is(err, service.ErrPersistFailed),
		errors.Is(err, enrichment.ErrTransientFailure):
		return http.StatusServiceUnavailable

	case errors.Is(err, enrichment.ErrDisabled),
		errors.Is(err, tutor.ErrDisabled):
		return http.StatusNotImplemented

	case errors.Is(err, tutor.ErrReplyFailed),
		errors.Is(err, enrichment.ErrContentBlocked),
		errors.Is(err, enrichment.ErrInvalidResponse),
		errors.Is(err, enrichment.ErrEnrichmentFailed):
		return http.StatusBadGateway

	// Special cases
	case errors.Is(err, session.ErrSessionDone):
		return http.StatusNoContent

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrWordNotFound):
		return "Word not found"

	case errors.Is(err, store.ErrReviewStateNotFound):
		return "Review state not found"

	case errors.Is(err, store.ErrTutorSessionNotFound):
		return "Tutor session not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, service.ErrNoActiveSession):
		return "No active study session"

	case errors.Is(err, store.ErrDuplicate):
		return "Entity already exists"

	case errors.Is(err, session.ErrNotIntro):
		return "Current step is not an introduction"

	case errors.Is(err, session.ErrNotExercise):
		return "Current step is not an exercise"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, srs.ErrInvalidGrade):
		return "Grade must be between 0 and 5"

	case errors.Is(err, domain.ErrInvalidReviewOutcome):
		return "Invalid outcome"

	case errors.Is(err, service.ErrInvalidAnswer):
		return "Invalid answer"

	case errors.Is(err, service.ErrInvalidImport):
		return "Invalid user data"

	case errors.Is(err, service.ErrEmptyUserID):
		return "User ID is required"

	case errors.Is(err, service.ErrInvalidTutorMessage):
		return "Invalid tutor message"

	case errors.Is(err, tutor.ErrDisabled):
		return "Tutor is not configured"

	case errors.Is(err, tutor.ErrReplyFailed):
		return "The tutor could not reply, please try again"

	case errors.Is(err, service.ErrPersistFailed):
		return "Progress could not be saved, please answer again"

	case errors.Is(err, enrichment.ErrDisabled):
		return "Enrichment is not configured"

	case errors.Is(err, enrichment.ErrTransientFailure):
		return "Enrichment is temporarily unavailable"

	case errors.Is(err, enrichment.ErrContentBlocked),
		errors.Is(err, enrichment.ErrInvalidResponse),
		errors.Is(err, enrichment.ErrEnrichmentFailed):
		return "Failed to generate content"

	default:
		// Operation context from service errors gives a slightly better message
		var serviceErr *service.ServiceError
		if errors.As(err, &serviceErr) {
			return fmt.Sprintf("Failed to %s", strings.ReplaceAll(serviceErr.Operation, "_", " "))
		}
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'AnswerRequest.Grade' Error:Field validation for 'Grade' failed on the 'max' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required", "notblank":
		return "required field"
	case "language":
		return "must be en or nl"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

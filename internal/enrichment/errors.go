package enrichment

import "errors"

// Common errors returned by enrichers
var (
	// ErrEnrichmentFailed is returned when enrichment fails for any general reason
	ErrEnrichmentFailed = errors.New("failed to enrich word")

	// ErrInvalidResponse is returned when the LLM response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during enrichment")

	// ErrInvalidConfig is returned when the enricher configuration is invalid
	ErrInvalidConfig = errors.New("invalid enricher configuration")

	// ErrDisabled is returned when no enricher is configured
	ErrDisabled = errors.New("enrichment is not configured")
)

// Package gemini provides implementations of the enrichment.Enricher and
// tutor.Responder interfaces that use Google's Gemini API to produce
// learning data for words and replies for the tutor chat.
//
// This package is an infrastructure adapter, connecting the application's
// enrichment boundary to Google's external Gemini AI service without exposing
// the details of the external service to the core application.
//
// Key components:
//
// 1. Enricher:
//   - Implements the enrichment.Enricher interface
//   - Requests JSON output constrained by a response schema
//   - Converts responses into enrichment.Result values
//
// 2. Tutor:
//   - Implements the tutor.Responder interface
//   - Sends the conversation as alternating user and model turns
//   - Restricts the system instruction to the learner's studied words
//
// 3. Prompt Management:
//   - Embedded prompt templates, optionally overridden from a file
//   - Substitutes the word and its imported glosses into templates
//
// 4. Error Handling:
//   - Retries transient errors with exponential backoff and jitter
//   - Translates API failures to enrichment package errors
//   - Treats safety blocks and malformed output as permanent
//
// The package depends on the google.golang.org/genai client library.
package gemini

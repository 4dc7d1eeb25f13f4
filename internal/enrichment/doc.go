// Package enrichment provides the boundary between the application core and
// external language-model services that fill in learning data for a word:
// vowelized form, transliteration, part of speech, synonyms, example sentences
// and usage notes.
//
// The Enricher interface is implemented by infrastructure adapters (see
// platform/gemini). Apply merges a Result into a WordItem without touching the
// glosses that came from the imported word list.
package enrichment

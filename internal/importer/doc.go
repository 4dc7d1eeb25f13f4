// Package importer loads word lists from XLSX and CSV files into the word
// store. Each row carries the raw form and its English and Dutch glosses.
// Import is idempotent: a word is identified by its raw form, so importing
// the same list twice creates nothing new.
package importer

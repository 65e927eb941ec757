// Package ocrcache stores OCR text in SQLite keyed by the SHA-256 of the image
// bytes, so repeated uploads of the same screenshot skip the recognition call.
//
// Only recognized text is stored. Classification verdicts are never persisted.
// Entries older than the configured TTL are ignored on read and pruned on Open.
package ocrcache

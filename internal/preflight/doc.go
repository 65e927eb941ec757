// Package preflight provides readiness checks for the providers and
// filesystem paths chatshot depends on.
//
// The CLI "chatshot status" command prints every result, and the HTTP API
// serves the same list from /api/status. Checks never fail the caller; each
// returns a Result describing what it found.
package preflight

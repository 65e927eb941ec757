// Package daemon runs the long-lived chatshot HTTP API.
//
// It wires configuration, the classification pipeline, and preflight status
// reporting into a single lifecycle with flock-based locking to prevent two
// servers sharing one state directory. Requests are tagged with a request id
// that flows into every log line the pipeline emits.
//
// Keep orchestration logic here: the classification stages live in the
// classifier package while the daemon focuses on startup, shutdown, and
// transport concerns.
package daemon

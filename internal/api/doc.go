// Package api defines wire-format types and converters for the HTTP API and
// the CLI's JSON output. It translates classifier results and preflight
// reports into transport-friendly DTOs so consumers never couple to internal
// types.
//
// # Key Types
//
// ClassifyResponse: verdict for one uploaded image, including the request id,
// label constant, verdict message and timing.
//
// StatusResponse: readiness of the configured providers and paths.
//
// # Converters
//
// FromResult: classifier.Result plus the pipeline error -> ClassifyResponse.
//
// FromPreflight: []preflight.Result -> StatusResponse.
//
// # Design Notes
//
// DTOs use snake_case JSON tags. Labels are exposed as the CHAT/NOT_CHAT
// constants plus an is_chat boolean.
package api

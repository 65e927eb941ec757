// Package services defines shared utilities consumed by the classification
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp stage names and request correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent API status codes.
//
// Subpackages hold the provider clients: yandexocr for text recognition and
// llm for the openai, yandexgpt and gemini completion providers.
package services

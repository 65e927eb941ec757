// Package llm provides the completion clients used to classify OCR text.
//
// # Providers
//
//   - openai: OpenAI-compatible chat completions (default; also serves vision
//     requests with an inline base64 image)
//   - yandexgpt: Yandex Foundation Models text completion
//   - gemini: Google Gemini through the genai SDK
//
// Each provider returns the raw answer text. Mapping that text to a label is
// the caller's job.
//
// # Entry Points
//
// New: construct the configured provider from config.LLMConfig.
// Provider.Complete: send a rendered prompt, receive the answer text.
// Client.CompleteWithImage: send a prompt plus an image (openai only).
// Provider.HealthCheck: verify credentials and model availability.
//
// # Retry Behaviour
//
// Requests are single-shot by default. With WithRetryMaxAttempts above one the
// HTTP providers retry on 408/429/5xx responses, empty answers, and network
// timeouts with exponential backoff (base 1s, max 10s), honouring
// Retry-After. Context cancellation aborts retries immediately.
package llm

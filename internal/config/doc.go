// Package config loads, normalizes, and validates chatshot configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the environment variables the
// service has always used (OPENAI_API_KEY, GPT_URL, CATALOG_ID,
// YANDEX_OCR_API_KEY, YANDEX_OCR_URL). Validation reports every missing
// credential at once, named by its environment variable.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical provider names, and clear validation errors.
package config

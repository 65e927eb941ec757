// Package textutil normalizes OCR output and prepares it for logs.
package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns text in Unicode NFC with CRLF line endings folded to LF.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return norm.NFC.String(text)
}

// IsBlank reports whether text has no visible characters.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// Snippet returns a single-line excerpt of at most limit runes with newlines escaped.
func Snippet(text string, limit int) string {
	escaped := strings.NewReplacer("\r", `\r`, "\n", `\n`, "\t", `\t`).Replace(strings.TrimSpace(text))
	if limit <= 0 {
		return escaped
	}
	runes := []rune(escaped)
	if len(runes) <= limit {
		return escaped
	}
	return string(runes[:limit]) + "..."
}

// Package label maps raw completion text to the binary chat verdict.
package label

import "strings"

// Label is the classification outcome for an image.
type Label int

const (
	NotChat Label = iota
	Chat
)

// DefaultMarker is the token a completion must contain to be read as CHAT.
const DefaultMarker = "<chat>"

// FromResponse returns Chat iff raw contains marker verbatim.
// An empty marker falls back to DefaultMarker.
func FromResponse(raw, marker string) Label {
	if marker == "" {
		marker = DefaultMarker
	}
	if strings.Contains(raw, marker) {
		return Chat
	}
	return NotChat
}

// IsChat reports whether l is Chat.
func (l Label) IsChat() bool { return l == Chat }

// String returns the wire form: "chat" or "not_chat".
func (l Label) String() string {
	if l == Chat {
		return "chat"
	}
	return "not_chat"
}

// Constant returns the upper-case form: "CHAT" or "NOT_CHAT".
func (l Label) Constant() string {
	if l == Chat {
		return "CHAT"
	}
	return "NOT_CHAT"
}

// Message returns the human-facing verdict.
func (l Label) Message() string {
	if l == Chat {
		return "This is a chat screenshot"
	}
	return "This is NOT a chat screenshot"
}

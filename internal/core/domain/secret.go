package domain

import "strings"

// redacted replaces secret values wherever they would otherwise be printed.
const redacted = "[REDACTED]"

// Secret holds a sensitive value such as an API key.
// It formats as [REDACTED] under every fmt verb and has no exported fields,
// so it cannot leak through logging, %v or encoding/json.
type Secret struct {
	value string
}

// NewSecret wraps a sensitive value. Surrounding whitespace is trimmed.
func NewSecret(v string) Secret {
	return Secret{value: strings.TrimSpace(v)}
}

// Reveal returns the underlying value. Only adapters that authenticate
// against an external service should call it.
func (s Secret) Reveal() string {
	return s.value
}

// IsEmpty reports whether no value is held.
func (s Secret) IsEmpty() bool {
	return s.value == ""
}

// String implements fmt.Stringer.
func (s Secret) String() string {
	if s.value == "" {
		return ""
	}
	return redacted
}

// GoString implements fmt.GoStringer so %#v is redacted too.
func (s Secret) GoString() string {
	return s.String()
}

// MarshalText keeps the value out of text and JSON encoders.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Redact replaces every occurrence of the secret in text.
func (s Secret) Redact(text string) string {
	if s.value == "" {
		return text
	}
	return strings.ReplaceAll(text, s.value, redacted)
}

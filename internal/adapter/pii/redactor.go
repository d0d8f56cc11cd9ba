package pii

import "regexp"

const RedactedPlaceholder = "[REDACTED]"

var (
	emailPattern    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	digitRunPattern = regexp.MustCompile(`\d[\d\s\-]{6,}\d`)
)

// Redactor scrubs PII from text before it is surfaced in semantic output.
// It matches email-like substrings and long digit runs (phone numbers, card
// numbers, SSNs) and replaces them with a fixed placeholder.
type Redactor struct {
	enabled bool
}

// NewRedactor creates a Redactor. When disabled it passes text through
// unchanged, which is useful in tests that assert on raw fixture text.
func NewRedactor(enabled bool) *Redactor {
	return &Redactor{enabled: enabled}
}

// Redact returns the input with all email-like and long-digit-run substrings
// replaced by the placeholder token.
func (r *Redactor) Redact(text string) string {
	if !r.enabled || text == "" {
		return text
	}
	out := emailPattern.ReplaceAllString(text, RedactedPlaceholder)
	out = digitRunPattern.ReplaceAllString(out, RedactedPlaceholder)
	return out
}

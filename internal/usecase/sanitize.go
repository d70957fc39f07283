package usecase

import (
	"regexp"
	"strings"
)

// Content is redacted before it leaves the process. The patterns are coarse
// on purpose: over-redacting a mood note is harmless, leaking an identifier
// is not.
var (
	emailRe    = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe    = regexp.MustCompile(`\+?\d[\d\s\-()]{8,}\d`)
	idNumberRe = regexp.MustCompile(`\b\d{9,11}\b`)
)

// Redact replaces emails, phone numbers and national-id style digit runs with
// placeholder tags.
func Redact(text string) string {
	text = emailRe.ReplaceAllString(text, "[email]")
	text = phoneRe.ReplaceAllString(text, "[phone]")
	text = idNumberRe.ReplaceAllString(text, "[id]")
	return text
}

// Normalize collapses whitespace and lowercases the raw content so that cache
// keys and keyword matching are insensitive to formatting noise.
func Normalize(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

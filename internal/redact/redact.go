// Package redact scrubs personally identifying fragments from free-form
// strings before they reach logs or activation events. Questionnaire text
// is sensitive, so every log line and preview passes through here.
package redact

import (
	"fmt"
	"log"
	"regexp"
)

var (
	emailRe = regexp.MustCompile(`(?i)[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\s().\-]{7,}\d`)
	tokenRe = regexp.MustCompile(`[A-Za-z0-9_\-]{24,}`)
)

// String redacts known PII patterns from free-form strings.
func String(s string) string {
	if s == "" {
		return s
	}
	out := emailRe.ReplaceAllString(s, "[REDACTED_EMAIL]")
	out = phoneRe.ReplaceAllString(out, "[REDACTED_PHONE]")
	out = tokenRe.ReplaceAllString(out, "[REDACTED_TOKEN]")
	return out
}

// Sprintf formats like fmt.Sprintf and redacts the result.
func Sprintf(format string, args ...interface{}) string {
	return String(fmt.Sprintf(format, args...))
}

// Logf prints a redacted log line.
func Logf(format string, args ...interface{}) {
	log.Print(Sprintf(format, args...))
}

// Fatalf prints a redacted fatal log line.
func Fatalf(format string, args ...interface{}) {
	log.Fatal(Sprintf(format, args...))
}

// Package redact scrubs personally identifiable information from free-text
// answers before they leave the process in a prompt.
package redact

import (
	"regexp"
	"strings"
	"sync/atomic"

	"postureai/domain/assess"
)

type patternClass struct {
	name        string
	re          *regexp.Regexp
	replacement string
}

// Pattern classes run in a fixed order so overlapping matches resolve
// deterministically.
var patterns = []patternClass{
	{"email", regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[EMAIL_REDACTED]"},
	{"phone", regexp.MustCompile(`\b(?:\+?1[-.]?)?\(?[0-9]{3}\)?[-.]?[0-9]{3}[-.]?[0-9]{4}\b`), "[PHONE_REDACTED]"},
	{"ssn", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), "[SSN_REDACTED]"},
	{"ip_address", regexp.MustCompile(`\b(?:[0-9]{1,3}\.){3}[0-9]{1,3}\b`), "[IP_REDACTED]"},
	{"credit_card", regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`), "[CARD_REDACTED]"},
	{"url_with_params", regexp.MustCompile(`(?i)https?://\S+\?\S+`), "[URL_REDACTED]"},
}

// Whitelisted values pass through untouched even when a pattern matches
var whitelist = []*regexp.Regexp{
	regexp.MustCompile(`(?i)example\.com`),
	regexp.MustCompile(`(?i)test@test\.com`),
	regexp.MustCompile(`127\.0\.0\.1`),
	regexp.MustCompile(`(?i)localhost`),
	regexp.MustCompile(`0\.0\.0\.0`),
}

// Redactor scrubs PII from text. Safe for concurrent use.
type Redactor struct {
	enabled bool
	total   atomic.Int64
}

// NewRedactor creates a redactor. When disabled, Redact is a pass-through
// and callers are expected to log a single warning per report.
func NewRedactor(enabled bool) *Redactor {
	return &Redactor{enabled: enabled}
}

// Enabled reports whether scrubbing is active
func (r *Redactor) Enabled() bool {
	return r.enabled
}

// TotalRedactions returns the process-lifetime redaction count
func (r *Redactor) TotalRedactions() int64 {
	return r.total.Load()
}

func whitelisted(match string) bool {
	for _, wl := range whitelist {
		if wl.MatchString(match) {
			return true
		}
	}
	return false
}

// Redact replaces every non-whitelisted PII occurrence and returns the
// scrubbed text with the number of replacements made.
func (r *Redactor) Redact(text string) (string, int) {
	if !r.enabled || text == "" {
		return text, 0
	}

	count := 0
	for _, pc := range patterns {
		matches := pc.re.FindAllString(text, -1)
		for _, match := range matches {
			if whitelisted(match) {
				continue
			}
			text = strings.Replace(text, match, pc.replacement, 1)
			count++
		}
	}

	r.total.Add(int64(count))
	return text, count
}

// RedactInputs scrubs the answer, comment and context of every input item,
// returning the scrubbed copy and the total replacement count.
func (r *Redactor) RedactInputs(items []assess.InputItem) ([]assess.InputItem, int) {
	if !r.enabled {
		return items, 0
	}

	out := make([]assess.InputItem, len(items))
	total := 0
	for i, item := range items {
		var n int
		item.Answer, n = r.Redact(item.Answer)
		total += n
		item.Comment, n = r.Redact(item.Comment)
		total += n
		item.Context, n = r.Redact(item.Context)
		total += n
		out[i] = item
	}
	return out, total
}

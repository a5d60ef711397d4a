// Package redact scrubs credentials, session tokens, mail API keys, database
// connection strings and email addresses from strings before they are logged.
package redact

import "regexp"

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// Rules are applied in order; specific token shapes run before the generic
// key/value rule so their placeholders survive.
var rules = []rule{
	{
		regexp.MustCompile(`(?i)(postgres|postgresql|mysql|redis)://[^@\s]+@`),
		"[REDACTED_CREDENTIAL]@",
	},
	{
		regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`),
		"[REDACTED_JWT]",
	},
	{
		regexp.MustCompile(`SG\.[A-Za-z0-9_-]{8,}\.[A-Za-z0-9_-]{8,}`),
		"[REDACTED_KEY]",
	},
	{
		regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_\-.~+/=]+`),
		"Bearer [REDACTED]",
	},
	{
		regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]+['"]?)[^'"&\s]{3,}`),
		"$1$2[REDACTED_CREDENTIAL]",
	},
	{
		regexp.MustCompile(`(?i)(api[_-]?key|token|secret)([\s:=]+['"]?)[A-Za-z0-9_\-.~+/]{8,}`),
		"$1$2[REDACTED_KEY]",
	},
	{
		regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		"[REDACTED_EMAIL]",
	},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

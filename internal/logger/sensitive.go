package logger

import (
	"regexp"
	"strings"
)

// sensitiveDataPatterns match credentials embedded in free-form strings
var sensitiveDataPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9-._~+/]+=*)`),
	regexp.MustCompile(`(?i)((api_?key|access_token|token|secret|password)=)([^&\s]{4,})`),
	regexp.MustCompile(`(sk-)([A-Za-z0-9_-]{8,})`),
}

// sensitiveKeywords mark field keys whose values are never logged
var sensitiveKeywords = []string{"password", "secret", "token", "api_key", "apikey", "authorization"}

// RedactSensitiveData replaces credentials inside input with "[REDACTED]"
func RedactSensitiveData(input string) string {
	if input == "" {
		return input
	}
	for _, pattern := range sensitiveDataPatterns {
		input = pattern.ReplaceAllString(input, "${1}[REDACTED]")
	}
	return input
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}

func redactValue(v string) string {
	if v == "" {
		return v
	}
	return "[REDACTED]"
}

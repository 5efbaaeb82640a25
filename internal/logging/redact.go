package logging

import (
	"regexp"
	"strings"
)

// Field names whose values never reach a log line.
var sensitiveFields = []string{
	"phone",
	"mobile",
	"address",
	"id_card",
	"idcard",
	"password",
	"secret",
	"token",
}

var (
	mobilePattern = regexp.MustCompile(`\b(1[3-9]\d)(\d{4})(\d{4})\b`)
	idCardPattern = regexp.MustCompile(`\b(\d{6})\d{8}(\d{3}[\dXx])\b`)
)

// RedactedValue is the replacement for sensitive values.
const RedactedValue = "[REDACTED]"

// Redact masks mainland mobile numbers and resident ID numbers in s,
// keeping enough digits for support staff to correlate records.
func Redact(s string) string {
	s = mobilePattern.ReplaceAllString(s, "$1****$3")
	return idCardPattern.ReplaceAllString(s, "$1********$2")
}

// RedactMap returns a copy of m with sensitive fields replaced and string
// values masked.
func RedactMap(m map[string]any) map[string]any {
	result := make(map[string]any, len(m))
	for k, v := range m {
		switch {
		case IsSensitiveField(k):
			result[k] = RedactedValue
		default:
			switch typed := v.(type) {
			case map[string]any:
				result[k] = RedactMap(typed)
			case string:
				result[k] = Redact(typed)
			default:
				result[k] = v
			}
		}
	}
	return result
}

// IsSensitiveField checks if a field name is considered sensitive.
func IsSensitiveField(name string) bool {
	lower := strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}

package patient

import (
	"encoding/json"
	"regexp"
	"strings"
)

// TriageField is the record key holding the triage level.
const TriageField = "triage level"

// DefaultTriage is shown when a record carries no recognizable level.
const DefaultTriage = "1"

// TriageOptions are the canonical triage levels, most urgent first.
var TriageOptions = []string{"1", "2", "3", "4", "5"}

// triageRe matches a standalone digit 1-5.
var triageRe = regexp.MustCompile(`\b([1-5])\b`)

// NormalizeTriage extracts a canonical level "1".."5" from free text,
// or "" when none is present.
func NormalizeTriage(text string) string {
	s := strings.TrimSpace(text)
	if ValidTriage(s) {
		return s
	}
	if m := triageRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

// TriageLevel normalizes a raw JSON value. Missing and null values yield "".
func TriageLevel(raw json.RawMessage) string {
	return NormalizeTriage(Text(raw))
}

// ValidTriage reports whether s is exactly one of TriageOptions.
func ValidTriage(s string) bool {
	return len(s) == 1 && s[0] >= '1' && s[0] <= '5'
}

package patient

import (
	"encoding/json"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// PatientIDCandidates are the spellings tried when looking up a patient id.
var PatientIDCandidates = []string{"patient_id", "patient id", "id"}

// ExtractField returns the value of the first candidate found in rec.
// Matching runs three passes, each over every candidate before the next:
// exact key, case-insensitive key, then normalized key (NFKC folded,
// underscores and whitespace removed, lowercased). When several keys fold
// to the same form, the later key in record order wins.
func ExtractField(rec *Record, candidates []string) (json.RawMessage, bool) {
	if rec == nil || len(candidates) == 0 {
		return nil, false
	}

	for _, c := range candidates {
		if v, ok := rec.Get(c); ok {
			return v, true
		}
	}

	lower := make(map[string]json.RawMessage, rec.Len())
	for _, f := range rec.fields {
		lower[strings.ToLower(f.Key)] = f.Value
	}
	for _, c := range candidates {
		if v, ok := lower[strings.ToLower(c)]; ok {
			return v, true
		}
	}

	normalized := make(map[string]json.RawMessage, rec.Len())
	for _, f := range rec.fields {
		normalized[NormalizeKey(f.Key)] = f.Value
	}
	for _, c := range candidates {
		if v, ok := normalized[NormalizeKey(c)]; ok {
			return v, true
		}
	}

	return nil, false
}

// NormalizeKey folds a field name for loose comparison.
func NormalizeKey(key string) string {
	folded := norm.NFKC.String(key)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r == '_' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

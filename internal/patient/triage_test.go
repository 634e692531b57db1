package patient

import (
	"encoding/json"
	"testing"
)

func TestNormalizeTriage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"3", "3"},
		{" 5 ", "5"},
		{"Level 2", "2"},
		{"3 - Vital Signs", "3"},
		{"ESI-4", "4"},
		{"level:1", "1"},
		{"23", ""},
		{"0", ""},
		{"6", ""},
		{"critical", ""},
		{"", ""},
		{"level 7 then 2", "2"},
		{"1.5", "1"},
	}

	for _, tt := range tests {
		if got := NormalizeTriage(tt.in); got != tt.want {
			t.Errorf("NormalizeTriage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTriageLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{``, ""},
		{`null`, ""},
		{`3`, "3"},
		{`"level 2"`, "2"},
		{`23`, ""},
		{`true`, ""},
		{`{"level":4}`, "4"},
	}

	for _, tt := range tests {
		if got := TriageLevel(json.RawMessage(tt.raw)); got != tt.want {
			t.Errorf("TriageLevel(%s) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestValidTriage(t *testing.T) {
	t.Parallel()

	for _, o := range TriageOptions {
		if !ValidTriage(o) {
			t.Errorf("ValidTriage(%q) = false", o)
		}
	}
	for _, s := range []string{"", "0", "6", "12", " 1", "a"} {
		if ValidTriage(s) {
			t.Errorf("ValidTriage(%q) = true", s)
		}
	}
}

func FuzzNormalizeTriage(f *testing.F) {
	f.Add("3")
	f.Add("Level 2")
	f.Add("23")
	f.Add("")

	f.Fuzz(func(t *testing.T, s string) {
		got := NormalizeTriage(s)
		if got != "" && !ValidTriage(got) {
			t.Fatalf("NormalizeTriage(%q) = %q, not a canonical level", s, got)
		}
	})
}

package security

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Trims whitespace",
			input: "  Pune  ",
			want:  "Pune",
		},
		{
			name:  "Removes null bytes",
			input: "Mar\x00athi",
			want:  "Marathi",
		},
		{
			name:  "Empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeString(tt.input); got != tt.want {
				t.Errorf("SanitizeString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeString_CapsRunes(t *testing.T) {
	input := strings.Repeat("अ", maxInputLength+10)

	got := SanitizeString(input)
	if n := utf8.RuneCountInString(got); n != maxInputLength {
		t.Errorf("rune count = %d, want %d", n, maxInputLength)
	}
	if !utf8.ValidString(got) {
		t.Error("SanitizeString() produced invalid UTF-8")
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Plain text untouched",
			input: "Asha viewed your profile",
			want:  "Asha viewed your profile",
		},
		{
			name:  "Script removed",
			input: "<script>alert(1)</script>Asha",
			want:  "Asha",
		},
		{
			name:  "Tags stripped and trimmed",
			input: "  <b>Hindu</b> ",
			want:  "Hindu",
		},
		{
			name:  "Apostrophe and ampersand kept literal",
			input: "D'Souza & Co sent you an interest",
			want:  "D'Souza & Co sent you an interest",
		},
		{
			name:  "Tags stripped around entities",
			input: "<i>Reddy & Naidu</i>",
			want:  "Reddy & Naidu",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeText(tt.input); got != tt.want {
				t.Errorf("SanitizeText() = %q, want %q", got, tt.want)
			}
		})
	}
}

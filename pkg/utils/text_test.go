package utils

import "testing"

func TestNormalizeField(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hindu", "hindu"},
		{"  Navi   Mumbai ", "navi mumbai"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := NormalizeField(tt.input); got != tt.want {
			t.Errorf("NormalizeField(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSameField(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Hindu", " hindu ", true},
		{"Pune", "PUNE", true},
		{"Pune", "Mumbai", false},
		{"Navi  Mumbai", "navi mumbai", true},
		{"Navi Mumbai", "NaviMumbai", false},
		{"", "", false},
		{" ", "", false},
	}

	for _, tt := range tests {
		if got := SameField(tt.a, tt.b); got != tt.want {
			t.Errorf("SameField(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

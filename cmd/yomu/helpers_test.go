package main

import "testing"

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"My Series", "my-series"},
		{"  Spaced  Out  ", "spaced--out"},
		{"Göttin!", "gttin"},
		{"???", "series"},
		{"", "series"},
	}
	for _, tc := range cases {
		if got := sanitizeName(tc.input); got != tc.want {
			t.Errorf("sanitizeName(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

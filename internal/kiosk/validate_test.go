package kiosk

import (
	"strings"
	"testing"
)

func TestValidName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"simple name", "ann", true},
		{"two letters", "bo", true},
		{"name with space", "mary jane", true},
		{"mixed case folds", "Mary Jane", true},
		{"fifty characters", strings.Repeat("a", 50), true},
		{"empty", "", false},
		{"single letter", "a", false},
		{"only spaces", "  ", false},
		{"trailing space", "ann ", false},
		{"digit", "ann3", false},
		{"punctuation", "ann!", false},
		{"diacritics", "anné", false},
		{"too long", strings.Repeat("a", 51), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidName(tc.input); got != tc.valid {
				t.Errorf("ValidName(%q) = %v, expected %v", tc.input, got, tc.valid)
			}
		})
	}
}

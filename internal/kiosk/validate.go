package kiosk

import "strings"

const (
	minNameLength = 2
	maxNameLength = 50
)

// ValidName reports whether a typed profile name is acceptable: 2 to 50
// characters, lowercase letters and spaces only after case folding, at least
// one letter, and no trailing space.
func ValidName(name string) bool {
	if len(name) < minNameLength || len(name) > maxNameLength {
		return false
	}

	folded := strings.ToLower(name)
	letters := 0
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z':
			letters++
		case r == ' ':
		default:
			return false
		}
	}
	if letters == 0 {
		return false
	}
	if strings.HasSuffix(name, " ") {
		return false
	}
	return true
}

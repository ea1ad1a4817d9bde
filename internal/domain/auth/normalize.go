package auth

import "strings"

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeDisplayName trims and collapses inner whitespace runs
func normalizeDisplayName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

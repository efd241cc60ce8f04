package utils

import "strings"

// CanonicalDNSName returns a DNS name in canonical form:
// - Trimmed of surrounding whitespace
// - Lowercased (ASCII only, names on the wire are not case-folded beyond that)
// - No trailing dot
func CanonicalDNSName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	return strings.TrimRight(name, ".")
}

// CountDots returns the number of label separators in name.
func CountDots(name string) int {
	return strings.Count(name, ".")
}

package utils

import "strings"

// CanonicalDNSName returns a DNS name in canonical form for map keys and logs:
// - Trimmed of surrounding whitespace
// - ASCII lowercased
// - At most one trailing (root) dot removed
//
// Further trailing dots are kept: "a.b.." still has an empty label and must
// be rejected by the codec rather than silently repaired.
func CanonicalDNSName(name string) string {
	return strings.TrimSuffix(FoldASCII(strings.TrimSpace(name)), ".")
}

// PresentationDNSName returns the absolute presentation form of a name:
// canonical, with exactly one trailing dot. The empty name maps to the root ".".
func PresentationDNSName(name string) string {
	return CanonicalDNSName(name) + "."
}

// FoldASCII lowercases A-Z and leaves every other byte untouched, which is the
// DNS case-insensitivity rule (RFC 4343). Unlike strings.ToLower it never
// rewrites non-ASCII or invalid UTF-8 bytes, so label lengths are preserved.
func FoldASCII(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}

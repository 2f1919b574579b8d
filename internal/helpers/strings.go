package helpers

import "unicode/utf8"

const ellipsis = "..."

// String dereferences an optional SDK string, nil reading as "".
func String(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Truncate cuts s to at most n bytes for log and error excerpts, marking the cut with "...".
// A multi-byte rune is never split.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= len(ellipsis) {
		return ellipsis[:max(n, 0)]
	}
	cut := n - len(ellipsis)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}

package search

import "strings"

// monthExclusions suppresses date-like false positives such as "May 7:34".
var monthExclusions = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// BuildQuery composes a single search string from time variants: each
// variant quoted, joined as alternatives, followed by a negation token for
// every calendar month. Deterministic for a given variant order.
func BuildQuery(variants []string) string {
	var b strings.Builder
	for i, v := range variants {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteByte('"')
		b.WriteString(v)
		b.WriteByte('"')
	}
	for _, month := range monthExclusions {
		b.WriteString(" -")
		b.WriteString(month)
	}
	return strings.TrimSpace(b.String())
}

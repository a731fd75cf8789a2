package dataset

import (
	"strings"
)

// invisibleMarkers are byte-order-mark and zero-width artifacts that leak
// into the first header cell when a file's encoding is misdeclared.
var invisibleMarkers = []string{
	"\uFEFF",             // UTF-8 BOM decoded as a rune
	"\u200B",             // zero-width space
	"\u200C",             // zero-width non-joiner
	"\u200D",             // zero-width joiner
	"\u00EF\u00BB\u00BF", // BOM bytes mis-decoded as latin-1
}

// NormalizeHeader trims surrounding whitespace and strips invisible marker
// sequences from a raw header cell. Idempotent.
func NormalizeHeader(raw string) string {
	s := raw
	for _, m := range invisibleMarkers {
		s = strings.ReplaceAll(s, m, "")
	}
	return strings.TrimSpace(s)
}

// CleanCell removes each junk substring (exact match, no patterns) from a
// raw cell value, then trims whitespace. Used for fields known to carry
// encoding-mangled prefixes, e.g. a mis-decoded multi-byte character
// rendered as "?? ". Idempotent: cleaning a clean value is a no-op.
func CleanCell(raw string, junk []string) string {
	s := raw
	for _, j := range junk {
		if j == "" {
			continue
		}
		s = strings.ReplaceAll(s, j, "")
	}
	return strings.TrimSpace(s)
}

package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// quoteRunes are dropped from names before matching: ASCII quotes, curly
// quotes, Hebrew geresh and gershayim, backtick and acute accent.
var quoteRunes = map[rune]bool{
	'\'':     true,
	'"':      true,
	'`':      true,
	'\u00B4': true, // acute accent
	'\u2018': true,
	'\u2019': true,
	'\u201C': true,
	'\u201D': true,
	'\u05F3': true, // geresh
	'\u05F4': true, // gershayim
}

// NormalizeName turns a human-entered name into its matching key:
//   - NFC composition
//   - drops quote and apostrophe variants and Hebrew points (niqqud)
//   - collapses whitespace runs into a single space and trims
//   - lowercases
//
// The result is idempotent: NormalizeName(NormalizeName(s)) == NormalizeName(s).
func NormalizeName(name string) string {
	name = norm.NFC.String(name)

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if quoteRunes[r] || isHebrewPoint(r) {
			continue
		}
		b.WriteRune(r)
	}

	return strings.ToLower(strings.Join(strings.Fields(b.String()), " "))
}

// FirstNameToken returns the first whitespace-delimited segment of the
// normalized name.
func FirstNameToken(name string) string {
	normalized := NormalizeName(name)
	if i := strings.IndexByte(normalized, ' '); i >= 0 {
		return normalized[:i]
	}
	return normalized
}

// SplitName splits a display name into first name and the remainder.
// Surrounding and repeated whitespace is dropped; case is preserved.
func SplitName(name string) (first, last string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}

// CanonicalDisplayName trims and collapses whitespace without changing case.
func CanonicalDisplayName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

func isHebrewPoint(r rune) bool {
	return r >= 0x0591 && r <= 0x05C7 && unicode.Is(unicode.Mn, r)
}

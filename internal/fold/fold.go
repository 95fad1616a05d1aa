// Package fold reduces user-typed Turkish labels to a stable ASCII key so
// that "Genel Müdür", "genel mudur" and "GENEL_MÜDÜR" compare equal.
package fold

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key upper-cases s, replaces runs of whitespace with "_" and strips
// diacritics (Ç→C, Ğ→G, İ→I, Ö→O, Ş→S, Ü→U).
func Key(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), "_")
	return stripMarks(s)
}

func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

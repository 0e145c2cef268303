package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText folds a place name to trimmed uppercase ASCII without
// diacritics, e.g. "São Luís " -> "SAO LUIS". The empty string stays empty.
// Applying it twice yields the same result as applying it once.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}
	// cases.Caser is stateful, so build one per call.
	s = cases.Upper(language.Und).String(s)
	s = strings.TrimSpace(s)
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
	// NFKD can expand compatibility characters into lowercase ASCII ("ª" -> "a").
	s = strings.ToUpper(s)
	return strings.TrimSpace(s)
}

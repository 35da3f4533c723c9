package sentiment

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText folds compatibility characters (fullwidth letters, ligatures)
// with NFKC and drops control characters other than newlines and tabs.
func NormalizeText(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, norm.NFKC.String(text))
}

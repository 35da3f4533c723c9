package sentiment

import (
	"strings"
	"unicode"
)

// Segment splits text into sentences.
//
// A split happens at a whitespace character that directly follows '.', '?'
// or '!', except when the text just before it looks like an abbreviation:
// either a capitalised two-letter word ("Dr.", "Mr.") or a dotted run of
// single characters ("U.S.", "e.g."). Each sentence is trimmed and empty
// fragments are dropped.
//
// This is a heuristic. Sentence-final abbreviations ("... in the U.S. Then")
// are not split, and a single capital initial ("J. Smith") is.
func Segment(text string) []string {
	runes := []rune(text)
	sentences := make([]string, 0, 4)

	start := 0
	for i, r := range runes {
		if !unicode.IsSpace(r) || !isBoundary(runes, i) {
			continue
		}
		sentences = appendSentence(sentences, runes[start:i])
		start = i + 1
	}
	sentences = appendSentence(sentences, runes[start:])

	return sentences
}

func appendSentence(sentences []string, fragment []rune) []string {
	s := strings.TrimSpace(string(fragment))
	if s == "" {
		return sentences
	}
	return append(sentences, s)
}

// isBoundary reports whether the whitespace at runes[i] ends a sentence.
func isBoundary(runes []rune, i int) bool {
	if i == 0 || !isTerminal(runes[i-1]) {
		return false
	}

	// "Dr." / "Mr."
	if i >= 3 && isUpperASCII(runes[i-3]) && isLowerASCII(runes[i-2]) && runes[i-1] == '.' {
		return false
	}

	// "U.S." / "e.g."
	if i >= 4 && isWordRune(runes[i-4]) && runes[i-3] == '.' && isWordRune(runes[i-2]) {
		return false
	}

	return true
}

func isTerminal(r rune) bool {
	return r == '.' || r == '?' || r == '!'
}

func isUpperASCII(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func isLowerASCII(r rune) bool {
	return r >= 'a' && r <= 'z'
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

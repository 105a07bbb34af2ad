// Package chunker caps text at a maximum number of characters, cutting at
// the nearest natural boundary before the limit so the translation model
// never receives half a sentence.
package chunker

import (
	"strings"
	"unicode"
)

// Truncate returns the longest prefix of text no longer than maxChars
// unicode code points, cut at (in order of preference):
//  1. Sentence-ending punctuation (. ! ? 。 ！ ？)
//  2. Whitespace (word boundary)
//  3. Hard cut at maxChars if no suitable boundary is found
//
// The second result reports whether anything was cut. If maxChars ≤ 0 the
// text is returned unchanged.
func Truncate(text string, maxChars int) (string, bool) {
	if maxChars <= 0 || len([]rune(text)) <= maxChars {
		return text, false
	}
	split := findSplit(text, maxChars)
	return strings.TrimSpace(text[:split]), true
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}

// findSplit returns the byte index within text at which to cut, aiming for
// at most maxChars runes. It searches backwards from maxChars for the best
// boundary.
func findSplit(text string, maxChars int) int {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return len(text)
	}
	candidate := runes[:maxChars]

	// 1. Sentence end. ASCII terminators need a following space (or the cap
	// itself) so decimals and abbreviations like "e.g" stay whole; CJK
	// terminators stand alone.
	for i := len(candidate) - 1; i > 0; i-- {
		r := candidate[i]
		if !isSentenceEnd(r) {
			continue
		}
		if r > unicode.MaxASCII || unicode.IsSpace(runes[i+1]) {
			return len(string(candidate[:i+1]))
		}
	}

	// 2. Whitespace word boundary.
	for i := len(candidate); i > 0; i-- {
		if unicode.IsSpace(runes[i]) {
			return len(string(candidate[:i]))
		}
	}

	// 3. Hard cut.
	return len(string(candidate))
}

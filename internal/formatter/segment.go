package formatter

import (
	"regexp"
	"strings"
	"unicode"
)

// Tier identifies the strategy that cut translated text into line chunks.
type Tier int

const (
	TierNone Tier = iota
	TierSentence
	TierClause
	TierWords
)

func (t Tier) String() string {
	switch t {
	case TierSentence:
		return "sentence"
	case TierClause:
		return "clause"
	case TierWords:
		return "words"
	default:
		return "none"
	}
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '。'
}

func isClauseEnd(r rune) bool {
	switch r {
	case ',', '，', ';', '；':
		return true
	}
	return false
}

// lineBreaks matches a run of line terminators with the blanks around it.
var lineBreaks = regexp.MustCompile(`[ \t]*[\r\n\v\f\x{85}\x{2028}\x{2029}]+[ \t]*`)

// JoinLines collapses every line break run in text into a single space.
// Chat models often wrap their answer over several lines; a chunk must
// never carry a line break of its own.
func JoinLines(text string) string {
	return lineBreaks.ReplaceAllString(text, " ")
}

// Segment cuts text into at most target chunks, trying in order:
//  1. Sentence terminators (. 。)
//  2. Clause separators (, ， ; ；) inside each sentence
//  3. Contiguous word buckets of len(words)/target words
//
// A tier is accepted once it yields at least target chunks; the last tier
// is accepted regardless. Surplus chunks are dropped, not merged. Line
// breaks in text are joined first, so no chunk spans two lines.
func Segment(text string, target int) ([]string, Tier) {
	if target <= 0 {
		return nil, TierNone
	}
	text = JoinLines(text)

	sentences := SplitSentences(text)
	if len(sentences) >= target {
		return sentences[:target], TierSentence
	}

	var clauses []string
	for _, s := range sentences {
		clauses = append(clauses, SplitClauses(s)...)
	}
	if len(clauses) >= target {
		return clauses[:target], TierClause
	}

	words := SplitWords(text, target)
	if len(words) > target {
		words = words[:target]
	}
	return words, TierWords
}

// SplitSentences splits text after each sentence terminator. The
// terminator stays with the chunk before it; chunks are trimmed and empty
// ones dropped.
func SplitSentences(text string) []string {
	return splitAfter(text, isSentenceEnd)
}

// SplitClauses splits text after each comma or semicolon, half- or
// full-width, with the same rules as SplitSentences.
func SplitClauses(text string) []string {
	return splitAfter(text, isClauseEnd)
}

// SplitWords groups the whitespace-separated words of text into
// contiguous buckets of max(1, len(words)/target) words. The result can
// hold more than target buckets when the division leaves a remainder;
// Segment truncates those.
func SplitWords(text string, target int) []string {
	words := strings.Fields(text)
	if len(words) == 0 || target <= 0 {
		return nil
	}

	size := len(words) / target
	if size < 1 {
		size = 1
	}

	parts := make([]string, 0, (len(words)+size-1)/size)
	for i := 0; i < len(words); i += size {
		end := i + size
		if end > len(words) {
			end = len(words)
		}
		parts = append(parts, strings.Join(words[i:end], " "))
	}
	return parts
}

func splitAfter(text string, isEnd func(rune) bool) []string {
	var parts []string
	var sb strings.Builder

	flush := func() {
		if chunk := strings.TrimSpace(sb.String()); chunk != "" {
			parts = append(parts, chunk)
		}
		sb.Reset()
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		sb.WriteRune(runes[i])
		if !isEnd(runes[i]) {
			continue
		}
		for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			i++
		}
		flush()
	}
	flush()

	return parts
}

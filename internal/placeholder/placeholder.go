// Package placeholder shields spans a chat model must not translate
// (fenced and inline code, HTML tags, URLs) behind numbered markers such
// as [PH0]. Restore puts the originals back into the model's answer.
package placeholder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Hint is appended to the system prompt whenever markers are present.
const Hint = "Keep every [PHn] marker exactly as it appears; do not translate, move or remove it."

var (
	// fenced code blocks: ```...``` (non-greedy, may span lines)
	reFencedCode = regexp.MustCompile("(?s)```.*?```")

	// inline code spans: `...`
	reInlineCode = regexp.MustCompile("`[^`]+`")

	// HTML/XML tags: opening, closing, and self-closing
	reHTMLTag = regexp.MustCompile(`<[^>]+>`)

	// URLs without trailing sentence punctuation, which belongs to the text
	reURL = regexp.MustCompile(`https?://[^\s<>"\x60]*[^\s<>"\x60.,;:!?)\]]`)

	rePlaceholder = regexp.MustCompile(`\[PH(\d+)\]`)
)

// Set holds the spans captured by Protect, indexed by marker number.
type Set struct {
	originals []string
}

// Protect replaces protected spans with [PH0], [PH1], ... in order of
// appearance. Tags are replaced before URLs so that a marker never ends up
// inside another captured span.
func Protect(text string) (string, Set) {
	var s Set

	replace := func(match string) string {
		s.originals = append(s.originals, match)
		return fmt.Sprintf("[PH%d]", len(s.originals)-1)
	}

	text = reFencedCode.ReplaceAllStringFunc(text, replace)
	text = reInlineCode.ReplaceAllStringFunc(text, replace)
	text = reHTMLTag.ReplaceAllStringFunc(text, replace)
	text = reURL.ReplaceAllStringFunc(text, replace)

	return text, s
}

func (s Set) Len() int {
	return len(s.originals)
}

// Restore substitutes markers in text with the captured originals. Unknown
// indices are left as they are.
func (s Set) Restore(text string) string {
	if len(s.originals) == 0 {
		return text
	}
	return rePlaceholder.ReplaceAllStringFunc(text, func(match string) string {
		sub := rePlaceholder.FindStringSubmatch(match)
		idx, err := strconv.Atoi(sub[1])
		if err != nil || idx >= len(s.originals) {
			return match
		}
		return s.originals[idx]
	})
}

// Missing returns the indices of markers the model dropped from text.
func (s Set) Missing(text string) []int {
	var missing []int
	for i := range s.originals {
		if !strings.Contains(text, fmt.Sprintf("[PH%d]", i)) {
			missing = append(missing, i)
		}
	}
	return missing
}

// Package validator flags backend output that does not look like a
// translation into the requested language. Small local models asked for a
// less common direction tend to echo the input or answer in its language;
// the orchestrator reports such output as a warning and still restores it.
package validator

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/language"

	"github.com/valpere/shapetran/internal/detector"
)

const (
	// minDetectRunes is the shortest output handed to the lingua detector.
	// Below it the guess between languages of one script is noise.
	minDetectRunes = 20
	// minDetectRunesHan applies to Han output, where one rune carries
	// about a word.
	minDetectRunesHan = 8
)

// scripts maps ISO 15924 codes to the rune tables used for the script
// check. Targets in any other script skip it.
var scripts = map[string]*unicode.RangeTable{
	"Hans": unicode.Han,
	"Hant": unicode.Han,
	"Latn": unicode.Latin,
	"Cyrl": unicode.Cyrillic,
}

type Validator struct {
	det *detector.Detector
}

// New creates a Validator on top of det. The detector is expensive to
// build; share one instance between the validator and source detection.
func New(det *detector.Detector) *Validator {
	return &Validator{det: det}
}

// Check returns nil when output plausibly translates source into
// targetLang. Otherwise the error says what is wrong. Cheap checks run
// first:
//  1. empty output
//  2. output repeating a source written in another script
//  3. output with letters but none in the target script
//  4. lingua detection, once output is long enough for it
//
// Short output is only held to the script checks, so a two-rune Chinese
// answer passes while a two-letter English one for zh does not.
func (v *Validator) Check(source, output, targetLang string) error {
	if targetLang == "" {
		return nil
	}

	text := strings.TrimSpace(output)
	if text == "" {
		return fmt.Errorf("translation is empty")
	}

	script, table := targetScript(targetLang)
	if table != nil {
		if sameText(source, text) && hasLetters(source) && !hasScript(source, table) {
			return fmt.Errorf("backend returned the input untranslated")
		}
		if hasLetters(text) && !hasScript(text, table) {
			return fmt.Errorf("expected %s script for %s, found none", script, targetLang)
		}
	}

	minRunes := minDetectRunes
	if table == unicode.Han {
		minRunes = minDetectRunesHan
	}
	if len([]rune(text)) < minRunes {
		return nil
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		return nil
	}
	if !strings.EqualFold(detected, targetLang) {
		return fmt.Errorf("expected %s but detected %s", strings.ToLower(targetLang), detected)
	}
	return nil
}

func targetScript(code string) (string, *unicode.RangeTable) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", nil
	}
	script, _ := tag.Script()
	return script.String(), scripts[script.String()]
}

func sameText(a, b string) bool {
	return strings.EqualFold(strings.Join(strings.Fields(a), " "), strings.Join(strings.Fields(b), " "))
}

func hasScript(text string, table *unicode.RangeTable) bool {
	for _, r := range text {
		if unicode.Is(table, r) {
			return true
		}
	}
	return false
}

func hasLetters(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

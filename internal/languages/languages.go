// Package languages holds the target languages the translation model
// accepts and the structural label translations for each of them.
package languages

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/valpere/shapetran/internal/formatter"
)

// Language is a supported target language.
type Language struct {
	Code   string
	Tag    language.Tag
	Labels formatter.Labels
}

// Name returns the English name of the language.
func (l Language) Name() string {
	return display.English.Tags().Name(l.Tag)
}

// SelfName returns the language's name for itself.
func (l Language) SelfName() string {
	return display.Self.Name(l.Tag)
}

var supported = map[string]Language{
	"zh": {
		Code:   "zh",
		Tag:    language.Chinese,
		Labels: formatter.DefaultLabels,
	},
	"en": {
		Code: "en",
		Tag:  language.English,
		Labels: formatter.Labels{
			{Source: "Error:", Target: "Error:"},
			{Source: "Source:", Target: "Source:"},
			{Source: "Original:", Target: "Original:"},
		},
	},
	"ru": {
		Code: "ru",
		Tag:  language.Russian,
		Labels: formatter.Labels{
			{Source: "Error:", Target: "Ошибка:"},
			{Source: "Source:", Target: "Источник:"},
			{Source: "Original:", Target: "Оригинал:"},
		},
	},
}

// Lookup normalises code (any BCP 47 form, e.g. "zh-Hans" or "RU") to its
// base language and returns it if supported.
func Lookup(code string) (Language, error) {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return Language{}, fmt.Errorf("invalid language code %q: %w", code, err)
	}
	base, _ := tag.Base()
	lang, ok := supported[base.String()]
	if !ok {
		return Language{}, fmt.Errorf("unsupported target language %q (supported: %s)", code, strings.Join(Codes(), ", "))
	}
	return lang, nil
}

// Codes returns the supported language codes in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(supported))
	for code := range supported {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// All returns every supported language, sorted by code.
func All() []Language {
	all := make([]Language, 0, len(supported))
	for _, code := range Codes() {
		all = append(all, supported[code])
	}
	return all
}

// Register adds or replaces a supported language. It is meant for
// program initialisation and is not safe for concurrent use.
func Register(lang Language) {
	supported[lang.Code] = lang
}

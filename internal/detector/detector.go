// Package detector guesses the language of a text with lingua-go.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector restricted to the given ISO 639-1 codes. With
// fewer than two known codes it falls back to every language lingua
// supports, which is slower to build and uses far more memory.
func New(codes ...string) *Detector {
	langs := fromCodes(codes)

	builder := lingua.NewLanguageDetectorBuilder()
	var detector lingua.LanguageDetector
	if len(langs) >= 2 {
		detector = builder.FromLanguages(langs...).Build()
	} else {
		detector = builder.FromAllLanguages().Build()
	}

	return &Detector{detector: detector}
}

func fromCodes(codes []string) []lingua.Language {
	var langs []lingua.Language
	for _, lang := range lingua.AllLanguages() {
		iso := lang.IsoCode639_1().String()
		for _, code := range codes {
			if strings.EqualFold(iso, strings.TrimSpace(code)) {
				langs = append(langs, lang)
				break
			}
		}
	}
	return langs
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the lower-case ISO 639-1 code of the detected language.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

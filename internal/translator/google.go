package translator

import (
	"context"
	"fmt"
	"time"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleBackend sends the directive's text to Google Cloud Translation. The
// target language is read back out of the directive.
type GoogleBackend struct {
	credentials string
	sourceLang  string
}

func NewGoogleBackend(credentials, sourceLang string) *GoogleBackend {
	return &GoogleBackend{credentials: credentials, sourceLang: sourceLang}
}

func (s *GoogleBackend) Name() string {
	return "google"
}

func (s *GoogleBackend) Generate(ctx context.Context, directive string) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	lang, text, ok := ParseDirective(directive)
	if !ok {
		return result, fmt.Errorf("malformed directive")
	}

	targetLangTag, err := language.Parse(lang)
	if err != nil {
		return result, fmt.Errorf("invalid target language: %w", err)
	}

	opts := []option.ClientOption{}
	if s.credentials != "" {
		opts = append(opts, option.WithCredentialsFile(s.credentials))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return result, fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	// Text format keeps the service from HTML-escaping punctuation.
	translateOpts := &translate.Options{Format: translate.Text}
	if s.sourceLang != "" && s.sourceLang != "auto" {
		if sourceLangTag, err := language.Parse(s.sourceLang); err == nil {
			translateOpts.Source = sourceLangTag
		}
	}

	translations, err := client.Translate(ctx, []string{text}, targetLangTag, translateOpts)
	if err != nil {
		return result, fmt.Errorf("translation failed: %w", err)
	}

	if len(translations) == 0 {
		return result, fmt.Errorf("no translation returned")
	}

	result.TranslatedText = translations[0].Text
	if translations[0].Source != language.Und {
		result.Metadata = map[string]string{"detected_source": translations[0].Source.String()}
	}

	return result, nil
}

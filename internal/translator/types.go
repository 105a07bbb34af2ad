package translator

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// directivePrefix is the task prefix the translation model was trained on.
const directivePrefix = "translate to %s: "

// ServiceConfig holds the settings of one backend. Fields a backend does
// not use are ignored.
type ServiceConfig struct {
	Credentials string        `mapstructure:"credentials" json:"credentials"`
	APIKey      string        `mapstructure:"api_key" json:"api_key"`
	Model       string        `mapstructure:"model" json:"model"`
	BaseURL     string        `mapstructure:"base_url" json:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
}

type ServiceResult struct {
	ServiceName    string            `json:"service_name"`
	TranslatedText string            `json:"translated_text"`
	Metadata       map[string]string `json:"metadata"`
	Latency        time.Duration     `json:"latency"`
}

// Backend turns a directive ("translate to zh: <text>") into translated
// text. Implementations return an error for any failure; an empty
// TranslatedText is a valid, if useless, answer.
type Backend interface {
	Name() string
	Generate(ctx context.Context, directive string) (*ServiceResult, error)
}

// Loader is implemented by backends that must fetch or warm a model before
// the first Generate call.
type Loader interface {
	Load(ctx context.Context) error
}

// BuildDirective prefixes text with the task directive for lang.
func BuildDirective(lang, text string) string {
	return fmt.Sprintf(directivePrefix, lang) + text
}

// ParseDirective splits a directive built by BuildDirective back into its
// language code and text.
func ParseDirective(directive string) (lang, text string, ok bool) {
	rest, found := strings.CutPrefix(directive, "translate to ")
	if !found {
		return "", "", false
	}
	lang, text, found = strings.Cut(rest, ": ")
	if !found || lang == "" || strings.ContainsAny(lang, " \n") {
		return "", "", false
	}
	return lang, text, true
}

package translator

import "fmt"

// Backends lists the names accepted by NewBackend.
var Backends = []string{"echo", "google", "ollama", "openai"}

// NewBackend constructs the backend called name. sourceLang is passed to
// backends that accept a source hint; "auto" or "" lets them detect it.
func NewBackend(name string, cfg ServiceConfig, sourceLang string) (Backend, error) {
	switch name {
	case "ollama":
		return NewOllamaBackend(cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai backend requires an API key")
		}
		return NewOpenAIBackend(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	case "google":
		return NewGoogleBackend(cfg.Credentials, sourceLang), nil
	case "echo":
		return NewEchoBackend(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (available: %v)", name, Backends)
	}
}

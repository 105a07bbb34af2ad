package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/valpere/shapetran/internal/postprocess"
)

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "t5-translate-en-ru-zh"
)

// OllamaBackend runs the translation model on a local Ollama server. The
// model is pulled on first use if the server does not have it yet, and
// served from the server's local store afterwards.
type OllamaBackend struct {
	baseURL string
	model   string
	client  *http.Client
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Raw    bool   `json:"raw"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

type ollamaPullRequest struct {
	Model  string `json:"model"`
	Stream bool   `json:"stream"`
}

func NewOllamaBackend(baseURL, model string, timeout time.Duration) *OllamaBackend {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	// Zero means no client-side limit; the orchestrator owns the deadline.
	return &OllamaBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *OllamaBackend) Name() string {
	return "ollama"
}

// Load makes sure the model is present on the server, pulling it when it
// is missing.
func (s *OllamaBackend) Load(ctx context.Context) error {
	present, err := s.hasModel(ctx)
	if err != nil {
		return err
	}
	if present {
		return nil
	}
	return s.pull(ctx)
}

func (s *OllamaBackend) hasModel(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("Ollama not available: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("Ollama returned status %d", resp.StatusCode)
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false, fmt.Errorf("failed to decode model list: %w", err)
	}
	for _, m := range tags.Models {
		if m.Name == s.model || strings.TrimSuffix(m.Name, ":latest") == s.model {
			return true, nil
		}
	}
	return false, nil
}

func (s *OllamaBackend) pull(ctx context.Context) error {
	body, err := json.Marshal(ollamaPullRequest{Model: s.model, Stream: false})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/pull", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("model pull failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model pull for %s returned status %d", s.model, resp.StatusCode)
	}
	return nil
}

func (s *OllamaBackend) Generate(ctx context.Context, directive string) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	// raw: the directive is the whole prompt, no chat template.
	jsonData, err := json.Marshal(ollamaGenerateRequest{
		Model:  s.model,
		Prompt: directive,
		Raw:    true,
		Stream: false,
	})
	if err != nil {
		return result, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return result, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return result, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var ollamaResp ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return result, fmt.Errorf("failed to decode response: %w", err)
	}

	result.TranslatedText = postprocess.Clean(ollamaResp.Response)
	result.Metadata = map[string]string{"model": s.model}

	return result, nil
}

package translator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/valpere/shapetran/internal/placeholder"
	"github.com/valpere/shapetran/internal/postprocess"
)

const (
	DefaultOpenAIModel       = "gpt-4o-mini"
	DefaultOpenRouterURL     = "https://openrouter.ai/api/v1"
	openAIDefaultTemperature = 0.2
)

const openAISystemPrompt = `You are a translation model. Each user message starts with "translate to <code>: " followed by the text. Respond with the translation of the text into the language with that ISO 639-1 code and nothing else. No explanations, no quotes. Keep sentence and clause punctuation so the text can be split back into lines.`

// OpenAIBackend sends directives to any OpenAI-compatible chat completion
// endpoint, including OpenRouter when BaseURL points there.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

func NewOpenAIBackend(apiKey, baseURL, model string, timeout time.Duration) *OpenAIBackend {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	config.HTTPClient = &http.Client{Timeout: timeout}

	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAIBackend{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (s *OpenAIBackend) Name() string {
	return "openai"
}

func (s *OpenAIBackend) Generate(ctx context.Context, directive string) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	system := openAISystemPrompt
	var markers placeholder.Set
	if lang, text, ok := ParseDirective(directive); ok {
		var protected string
		protected, markers = placeholder.Protect(text)
		if markers.Len() > 0 {
			directive = BuildDirective(lang, protected)
			system += " " + placeholder.Hint
		}
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: directive},
		},
		Temperature: openAIDefaultTemperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return result, fmt.Errorf("API returned status %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return result, fmt.Errorf("request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return result, fmt.Errorf("empty response from API")
	}

	text := postprocess.Clean(resp.Choices[0].Message.Content)
	result.Metadata = map[string]string{
		"model":             s.model,
		"prompt_tokens":     fmt.Sprintf("%d", resp.Usage.PromptTokens),
		"completion_tokens": fmt.Sprintf("%d", resp.Usage.CompletionTokens),
	}
	if missing := markers.Missing(text); len(missing) > 0 {
		result.Metadata["missing_placeholders"] = fmt.Sprint(missing)
	}
	result.TranslatedText = markers.Restore(text)
	if finish := strings.TrimSpace(string(resp.Choices[0].FinishReason)); finish != "" {
		result.Metadata["finish_reason"] = finish
	}

	return result, nil
}

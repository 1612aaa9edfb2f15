package completion

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/valpere/hablo/internal/usage"
)

const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"

	DefaultOpenAIModel     = "gpt-3.5-turbo"
	DefaultOpenRouterModel = "meta-llama/llama-3.1-8b-instruct:free"

	openRouterBaseURL = "https://openrouter.ai/api/v1"
)

// OpenAIService calls the OpenAI chat completions API, or any endpoint that
// speaks it (OpenRouter).
type OpenAIService struct {
	name   string
	model  string
	client *openai.Client
}

// NewOpenAIService creates a service for api.openai.com unless baseURL is set.
func NewOpenAIService(apiKey, baseURL, model string) *OpenAIService {
	if model == "" {
		model = DefaultOpenAIModel
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	config.HTTPClient = &http.Client{Timeout: 120 * time.Second}
	return &OpenAIService{
		name:   ProviderOpenAI,
		model:  model,
		client: openai.NewClientWithConfig(config),
	}
}

// NewOpenRouterService creates an OpenAIService pointed at OpenRouter, which
// asks clients to identify themselves with referer and title headers.
func NewOpenRouterService(apiKey, baseURL, model string) *OpenAIService {
	if baseURL == "" {
		baseURL = openRouterBaseURL
	}
	if model == "" {
		model = DefaultOpenRouterModel
	}
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL
	config.HTTPClient = &http.Client{
		Timeout: 120 * time.Second,
		Transport: headerTransport{
			base: http.DefaultTransport,
			headers: map[string]string{
				"HTTP-Referer": "https://hablo.local",
				"X-Title":      "Hablo",
			},
		},
	}
	return &OpenAIService{
		name:   ProviderOpenRouter,
		model:  model,
		client: openai.NewClientWithConfig(config),
	}
}

func (s *OpenAIService) Name() string {
	return s.name
}

func (s *OpenAIService) Model() string {
	return s.model
}

func (s *OpenAIService) Complete(ctx context.Context, req Request) (*Result, error) {
	result := &Result{Service: s.name, Model: s.model}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	chatReq := openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		chatReq.Messages = append(chatReq.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	if req.Temperature != nil {
		chatReq.Temperature = *req.Temperature
	}

	resp, err := s.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return result, fmt.Errorf("%s request failed: %w", s.name, err)
	}
	if len(resp.Choices) == 0 {
		return result, fmt.Errorf("empty response from %s", s.name)
	}

	if resp.Model != "" {
		result.Model = resp.Model
	}
	result.Content = resp.Choices[0].Message.Content
	result.Usage = usage.Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}
	return result, nil
}

type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

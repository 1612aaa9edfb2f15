package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/valpere/hablo/internal/usage"
)

const (
	ProviderOllama = "ollama"

	DefaultOllamaModel   = "llama3.2"
	DefaultOllamaBaseURL = "http://localhost:11434"
)

// OllamaService uses a local Ollama server's chat endpoint.
type OllamaService struct {
	baseURL string
	model   string
	client  *http.Client
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	PromptEvalCount int `json:"prompt_eval_count"`
	EvalCount       int `json:"eval_count"`
}

func NewOllamaService(baseURL, model string) *OllamaService {
	if baseURL == "" {
		baseURL = DefaultOllamaBaseURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaService{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (s *OllamaService) Name() string {
	return ProviderOllama
}

func (s *OllamaService) Complete(ctx context.Context, req Request) (*Result, error) {
	result := &Result{Service: s.Name(), Model: s.model}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	body := ollamaChatRequest{
		Model:    s.model,
		Messages: req.Messages,
		Stream:   false,
	}
	if req.Temperature != nil {
		body.Options = map[string]any{"temperature": *req.Temperature}
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return result, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/api/chat", s.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return result, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return result, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return result, fmt.Errorf("failed to decode response: %w", err)
	}

	result.Content = chatResp.Message.Content
	if chatResp.Model != "" {
		result.Model = chatResp.Model
	}

	// Older servers omit the counters.
	result.Usage = usage.Usage{
		PromptTokens:     chatResp.PromptEvalCount,
		CompletionTokens: chatResp.EvalCount,
	}
	if result.Usage.Total() == 0 {
		for _, m := range req.Messages {
			result.Usage.PromptTokens += usage.Estimate(m.Content)
		}
		result.Usage.CompletionTokens = usage.Estimate(result.Content)
	}

	return result, nil
}

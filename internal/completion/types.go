// Package completion talks to chat-completion services. Every tutor request
// (reply, correction, explanation, conversation starter) is one Complete call.
package completion

import (
	"context"
	"fmt"
	"time"

	"github.com/valpere/hablo/internal/usage"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Config selects and configures a completion service.
type Config struct {
	Provider    string        `mapstructure:"provider" json:"provider"`
	Model       string        `mapstructure:"model" json:"model"`
	BaseURL     string        `mapstructure:"base_url" json:"base_url"`
	APIKey      string        `mapstructure:"api_key" json:"-"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts" json:"max_attempts"`
	RetryDelay  time.Duration `mapstructure:"retry_delay" json:"retry_delay"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Messages []Message `json:"messages"`
	// Temperature is left to the service default when nil.
	Temperature *float32 `json:"temperature,omitempty"`
}

type Result struct {
	Service string        `json:"service"`
	Model   string        `json:"model"`
	Content string        `json:"content"`
	Usage   usage.Usage   `json:"usage"`
	Latency time.Duration `json:"latency"`
}

type Service interface {
	Name() string
	Complete(ctx context.Context, req Request) (*Result, error)
}

// Temperature returns a pointer for Request.Temperature.
func Temperature(t float32) *float32 {
	return &t
}

// UserPrompt builds a single-message request.
func UserPrompt(prompt string, temperature *float32) Request {
	return Request{
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		Temperature: temperature,
	}
}

// RequiresAPIKey reports whether provider needs an API key.
func RequiresAPIKey(provider string) bool {
	return provider == "" || provider == ProviderOpenAI || provider == ProviderOpenRouter
}

// New builds the service named by cfg.Provider.
func New(cfg Config) (Service, error) {
	switch cfg.Provider {
	case "", ProviderOpenAI:
		return NewOpenAIService(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case ProviderOpenRouter:
		return NewOpenRouterService(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case ProviderOllama:
		return NewOllamaService(cfg.BaseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown completion provider: %s", cfg.Provider)
	}
}

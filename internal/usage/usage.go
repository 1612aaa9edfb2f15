// Package usage tallies completion tokens and prices them.
package usage

import "fmt"

// Usage counts the tokens consumed by one or more completion calls.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Total returns prompt plus completion tokens.
func (u Usage) Total() int {
	return u.PromptTokens + u.CompletionTokens
}

// Add accumulates other into u.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
}

// Pricing is the USD price per thousand tokens.
type Pricing struct {
	PromptPer1K     float64 `mapstructure:"prompt_per_1k"`
	CompletionPer1K float64 `mapstructure:"completion_per_1k"`
}

// DefaultPricing matches gpt-3.5-turbo list prices.
var DefaultPricing = Pricing{PromptPer1K: 0.0015, CompletionPer1K: 0.002}

// Cost returns the USD cost of u.
func (p Pricing) Cost(u Usage) float64 {
	return p.PromptPer1K*float64(u.PromptTokens)/1000 + p.CompletionPer1K*float64(u.CompletionTokens)/1000
}

// Accountant formats a running cost for display.
func Accountant(cost float64) string {
	return fmt.Sprintf("You've spent $%.3f USD on this conversation.", cost)
}

// Estimate gives a rough token count for providers that do not report usage,
// using ~4 characters per token.
func Estimate(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}

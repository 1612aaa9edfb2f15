package usage

import (
	"math"
	"testing"
)

func TestUsage_Add(t *testing.T) {
	var u Usage
	u.Add(Usage{PromptTokens: 100, CompletionTokens: 20})
	u.Add(Usage{PromptTokens: 50, CompletionTokens: 5})

	if u.PromptTokens != 150 || u.CompletionTokens != 25 {
		t.Errorf("unexpected usage: %+v", u)
	}
	if u.Total() != 175 {
		t.Errorf("expected total 175, got %d", u.Total())
	}
}

func TestPricing_Cost(t *testing.T) {
	p := Pricing{PromptPer1K: 0.0015, CompletionPer1K: 0.002}

	cost := p.Cost(Usage{PromptTokens: 2000, CompletionTokens: 1000})
	if math.Abs(cost-0.005) > 1e-12 {
		t.Errorf("expected cost 0.005, got %v", cost)
	}
	if p.Cost(Usage{}) != 0 {
		t.Error("expected zero cost for zero usage")
	}
}

func TestAccountant(t *testing.T) {
	tests := []struct {
		cost float64
		want string
	}{
		{0, "You've spent $0.000 USD on this conversation."},
		{0.0042, "You've spent $0.004 USD on this conversation."},
		{1.23456, "You've spent $1.235 USD on this conversation."},
	}

	for _, tt := range tests {
		if got := Accountant(tt.cost); got != tt.want {
			t.Errorf("Accountant(%v) = %q, want %q", tt.cost, got, tt.want)
		}
	}
}

func TestEstimate(t *testing.T) {
	if Estimate("") != 0 {
		t.Error("expected 0 for empty text")
	}
	if got := Estimate("abcd"); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	if got := Estimate("abcde"); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
}

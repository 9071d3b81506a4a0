package metrics

import "math"

// modelPrice is USD per single token
type modelPrice struct {
	Prompt     float64
	Completion float64
}

// Pricing in USD per 1K tokens, divided down to per-token rates.
// Unknown models bill at the gpt-4 rate.
var pricing = map[string]modelPrice{
	"gpt-4":         {Prompt: 0.01 / 1000, Completion: 0.03 / 1000},
	"gpt-4-turbo":   {Prompt: 0.01 / 1000, Completion: 0.03 / 1000},
	"gpt-3.5-turbo": {Prompt: 0.0005 / 1000, Completion: 0.0015 / 1000},
}

// CalculateCost prices one call, rounded to 6 decimal places
func CalculateCost(model string, tokensPrompt, tokensCompletion int) float64 {
	price, ok := pricing[model]
	if !ok {
		price = pricing["gpt-4"]
	}
	cost := float64(tokensPrompt)*price.Prompt + float64(tokensCompletion)*price.Completion
	return math.Round(cost*1e6) / 1e6
}

// SetPriceOverride replaces the per-1K-token rates for a model. Used by the
// config layer when a pricing override is supplied.
func SetPriceOverride(model string, promptPer1K, completionPer1K float64) {
	pricing[model] = modelPrice{Prompt: promptPer1K / 1000, Completion: completionPer1K / 1000}
}

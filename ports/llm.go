package ports

import "context"

// UsageData is the provider-reported token accounting for one call
type UsageData struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model"`
}

// ChatRequest is a single JSON-mode chat completion. The assembled prompt
// travels as one user message; no streaming.
type ChatRequest struct {
	Model         string
	SystemMessage string
	UserMessage   string
	Temperature   float64
	MaxTokens     int
}

// ChatResponse carries the raw content plus usage accounting
type ChatResponse struct {
	Content      string
	FinishReason string
	Usage        UsageData
}

// LLMClient is the outbound chat-completion port. Implementations must
// return core.ErrRateLimited for HTTP 429 and provider "rate limit" text so
// the pool can rotate credentials.
type LLMClient interface {
	ChatCompletion(ctx context.Context, apiKey string, req ChatRequest) (*ChatResponse, error)
}

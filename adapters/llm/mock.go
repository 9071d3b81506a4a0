package llm

import (
	"context"

	"postureai/domain/core"
	"postureai/ports"
)

// MockLLMClient is a scripted LLMClient for tests. Responses are played
// back in order; the last entry repeats once the script is exhausted.
type MockLLMClient struct {
	Responses []MockResponse
	Calls     int
	Requests  []ports.ChatRequest
	Keys      []string
}

// MockResponse is one scripted turn.
type MockResponse struct {
	Content      string
	FinishReason string
	Usage        ports.UsageData
	Err          error
}

func (m *MockLLMClient) ChatCompletion(_ context.Context, apiKey string, req ports.ChatRequest) (*ports.ChatResponse, error) {
	idx := m.Calls
	m.Calls++
	m.Requests = append(m.Requests, req)
	m.Keys = append(m.Keys, apiKey)

	if len(m.Responses) == 0 {
		return nil, core.ErrEmptyResponse
	}
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	r := m.Responses[idx]
	if r.Err != nil {
		return nil, r.Err
	}
	finish := r.FinishReason
	if finish == "" {
		finish = "stop"
	}
	usage := r.Usage
	if usage.Model == "" {
		usage.Model = req.Model
	}
	return &ports.ChatResponse{Content: r.Content, FinishReason: finish, Usage: usage}, nil
}

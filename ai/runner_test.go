package ai

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"postureai/adapters/llm"
	"postureai/domain/artifact"
	"postureai/internal"
	"postureai/internal/config"
	"postureai/internal/keypool"
	"postureai/internal/testkit"
	"postureai/ports"
)

func testAIConfig() config.AIConfig {
	return config.AIConfig{
		DefaultModel:        "gpt-4-turbo",
		FallbackModel:       "gpt-3.5-turbo",
		Temperature:         0.3,
		MaxTokens:           1500,
		FallbackMaxTokens:   800,
		FallbackTemperature: 0.5,
		MaxRetries:          3,
	}
}

func testRunner(t *testing.T, mock *llm.MockLLMClient) *Runner {
	t.Helper()
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		t.Fatal(err)
	}
	cipher, err := keypool.LoadCipher(base64.StdEncoding.EncodeToString(raw), "")
	if err != nil {
		t.Fatalf("failed to build cipher: %v", err)
	}

	log := internal.NewLogger(internal.LogLevelError)
	pool := keypool.NewPool(testkit.NewInMemoryCredentialRepo(), cipher, config.PoolConfig{
		PerKeyQPS:           1000,
		CooldownCapMinutes:  60,
		DeactivateThreshold: 5,
	}, log)
	if _, err := pool.Add(context.Background(), "test-key", "sk-test-abcdef1234", "tester"); err != nil {
		t.Fatalf("failed to seed credential: %v", err)
	}

	r := NewRunner(mock, pool, testAIConfig(), log)
	r.sleep = func(d time.Duration) {}
	return r
}

func usage(prompt, completion int) ports.UsageData {
	return ports.UsageData{PromptTokens: prompt, CompletionTokens: completion, TotalTokens: prompt + completion}
}

func TestGenerateSectionFirstAttempt(t *testing.T) {
	mock := &llm.MockLLMClient{Responses: []llm.MockResponse{
		{Content: testkit.ValidSectionJSON(), Usage: usage(1200, 600)},
	}}
	r := testRunner(t, mock)

	art, out := r.GenerateSection(context.Background(), "Identity & Access Management", "system", "user", 3)

	if art.IsDegraded() {
		t.Fatal("expected validated artifact, got degraded")
	}
	if out.Degraded {
		t.Error("outcome should not be degraded")
	}
	if out.AttemptCount != 1 {
		t.Errorf("expected 1 attempt, got %d", out.AttemptCount)
	}
	if out.TokensPrompt != 1200 || out.TokensCompletion != 600 {
		t.Errorf("unexpected token totals: %d/%d", out.TokensPrompt, out.TokensCompletion)
	}
	if out.CostUSD <= 0 {
		t.Errorf("expected positive cost, got %f", out.CostUSD)
	}
	if mock.Requests[0].Model != "gpt-4-turbo" {
		t.Errorf("expected primary model, got %s", mock.Requests[0].Model)
	}
}

func TestGenerateSectionRetriesThenSucceeds(t *testing.T) {
	mock := &llm.MockLLMClient{Responses: []llm.MockResponse{
		{Content: "not json at all", Usage: usage(100, 10)},
		{Content: testkit.ValidSectionJSON(), Usage: usage(1200, 600)},
	}}
	r := testRunner(t, mock)

	art, out := r.GenerateSection(context.Background(), "Identity & Access Management", "system", "user", 3)

	if art.IsDegraded() {
		t.Fatal("expected validated artifact after retry")
	}
	if out.AttemptCount != 2 {
		t.Errorf("expected 2 attempts, got %d", out.AttemptCount)
	}
	// Token usage accumulates across the failed attempt too.
	if out.TokensPrompt != 1300 {
		t.Errorf("expected accumulated prompt tokens 1300, got %d", out.TokensPrompt)
	}
}

func TestGenerateSectionFencedContent(t *testing.T) {
	mock := &llm.MockLLMClient{Responses: []llm.MockResponse{
		{Content: "```json\n" + testkit.ValidSectionJSON() + "\n```", Usage: usage(800, 400)},
	}}
	r := testRunner(t, mock)

	art, out := r.GenerateSection(context.Background(), "Identity & Access Management", "system", "user", 3)
	if art.IsDegraded() || out.Degraded {
		t.Fatal("fenced JSON should decode on the first attempt")
	}
}

func TestGenerateSectionRiskCouplingExhaustsToDegraded(t *testing.T) {
	// A Critical gap with a Medium risk level violates the coupling rule on
	// every attempt, so the chain must end degraded and touch the fallback.
	bad := testkit.ValidSectionArtifact()
	bad.Gaps[0].Severity = artifact.SeverityCritical
	bad.RiskLevel = artifact.RiskMedium
	raw, _ := json.Marshal(bad)

	mock := &llm.MockLLMClient{Responses: []llm.MockResponse{
		{Content: string(raw), Usage: usage(100, 50)},
	}}
	r := testRunner(t, mock)

	art, out := r.GenerateSection(context.Background(), "Identity & Access Management", "system", "user", 3)

	if !art.IsDegraded() {
		t.Fatal("expected degraded artifact")
	}
	if art.RiskLevel != artifact.RiskMedium {
		t.Errorf("degraded placeholder should carry medium risk, got %s", art.RiskLevel)
	}
	if !strings.Contains(art.RiskExplanation, "Identity & Access Management") {
		t.Errorf("degraded placeholder should name the section, got %q", art.RiskExplanation)
	}
	if !out.Degraded {
		t.Error("outcome should be marked degraded")
	}
	if out.AttemptCount != 4 {
		t.Errorf("expected 3 primary + 1 fallback attempts, got %d", out.AttemptCount)
	}
	if out.FallbackModel == nil || *out.FallbackModel != "gpt-3.5-turbo" {
		t.Error("expected fallback model to be recorded")
	}
	if out.ErrorCode == nil || *out.ErrorCode != "SCHEMA_VIOLATION" {
		t.Errorf("expected SCHEMA_VIOLATION error code, got %v", out.ErrorCode)
	}
	last := mock.Requests[len(mock.Requests)-1]
	if last.Model != "gpt-3.5-turbo" || last.MaxTokens != 800 {
		t.Errorf("fallback request should use gpt-3.5-turbo with 800 max tokens, got %s/%d", last.Model, last.MaxTokens)
	}
}

func TestGenerateSectionFallbackRecovers(t *testing.T) {
	mock := &llm.MockLLMClient{Responses: []llm.MockResponse{
		{Content: "garbage"},
		{Content: "garbage"},
		{Content: "garbage"},
		{Content: testkit.ValidSectionJSON(), Usage: usage(700, 350)},
	}}
	r := testRunner(t, mock)

	art, out := r.GenerateSection(context.Background(), "Identity & Access Management", "system", "user", 3)

	if art.IsDegraded() {
		t.Fatal("fallback model produced a valid artifact; result must not be degraded")
	}
	if out.Model != "gpt-3.5-turbo" {
		t.Errorf("outcome model should be the fallback, got %s", out.Model)
	}
	if out.FallbackModel == nil {
		t.Error("fallback model should be recorded even on recovery")
	}
}

func TestGenerateSynthesis(t *testing.T) {
	mock := &llm.MockLLMClient{Responses: []llm.MockResponse{
		{Content: testkit.ValidSynthesisJSON(), Usage: usage(2000, 900)},
	}}
	r := testRunner(t, mock)

	art, out, err := r.GenerateSynthesis(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if art.OverallRiskLevel != artifact.RiskMedium {
		t.Errorf("unexpected risk level %s", art.OverallRiskLevel)
	}
	if out.AttemptCount != 1 {
		t.Errorf("expected 1 attempt, got %d", out.AttemptCount)
	}
}

func TestGenerateSynthesisExhaustedReturnsError(t *testing.T) {
	mock := &llm.MockLLMClient{Responses: []llm.MockResponse{
		{Content: "not a synthesis"},
	}}
	r := testRunner(t, mock)

	_, out, err := r.GenerateSynthesis(context.Background(), "system", "user")
	if err == nil {
		t.Fatal("expected error when every attempt fails")
	}
	if !out.Degraded {
		t.Error("outcome should be degraded")
	}
}

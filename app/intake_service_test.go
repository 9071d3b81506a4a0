package app

import (
	"context"
	"errors"
	"testing"

	"postureai/adapters/llm"
	"postureai/domain/intake"
	"postureai/internal"
	"postureai/internal/testkit"
)

func intakeAnswers(pref intake.TimePreference) intake.Answers {
	return intake.Answers{
		Role:           "ciso",
		OrgSize:        "201-1000",
		Sector:         "manufacturing",
		Environment:    "hybrid",
		SystemTypes:    []string{"web_applications", "ot_ics"},
		CloudProviders: []string{"aws"},
		PrimaryGoal:    "understand overall security posture",
		TimePreference: pref,
	}
}

func newIntakeService(t *testing.T, mock *llm.MockLLMClient) (*IntakeService, *testkit.InMemoryIntakeRepo) {
	t.Helper()
	env := newTestEnv(t, mock)
	sessions := testkit.NewInMemoryIntakeRepo()
	log := internal.NewLogger(internal.LogLevelError)
	svc := NewIntakeService(testConfig().AI, env.runner, intake.DefaultCatalogue(), sessions, log)
	return svc, sessions
}

const intakeModelReply = `{
	"recommended_sections": [
		{"id": "section_1", "priority": "must_do", "reason": "governance baseline", "confidence": 0.9},
		{"id": "section_9", "priority": "should_do", "reason": "aws footprint", "confidence": 0.8},
		{"id": "section_8", "priority": "should_do", "reason": "web applications in scope", "confidence": 0.75}
	],
	"excluded_sections": [
		{"id": "section_18", "reason": "assumed no industrial systems", "confidence": 0.6}
	]
}`

func TestIntakeRecommendModelPath(t *testing.T) {
	mock := &llm.MockLLMClient{Responses: []llm.MockResponse{
		{Content: intakeModelReply, Usage: usage(600, 250)},
	}}
	svc, sessions := newIntakeService(t, mock)

	result, err := svc.Recommend(context.Background(), intakeAnswers(intake.TimeDeep), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.UsedFallback {
		t.Error("model path succeeded; fallback flag must be false")
	}
	if mock.Requests[0].Model != "gpt-4o-mini" {
		t.Errorf("intake must use the intake model, got %s", mock.Requests[0].Model)
	}

	ids := map[string]bool{}
	for _, rec := range result.Set.Recommended {
		ids[rec.ID] = true
	}
	// Guardrails: IAM is always present, and the OT/ICS section is forced
	// in with its model-proposed exclusion removed.
	if !ids["section_4"] {
		t.Error("guardrails must force-include section_4")
	}
	if !ids["section_18"] {
		t.Error("guardrails must force-include section_18 for OT/ICS users")
	}
	for _, ex := range result.Set.Excluded {
		if ex.ID == "section_18" {
			t.Error("section_18 exclusion should have been removed")
		}
	}

	if len(sessions.Sessions) != 1 {
		t.Fatalf("expected 1 persisted session, got %d", len(sessions.Sessions))
	}
	if sessions.Sessions[0].UsedFallback {
		t.Error("persisted session should not be flagged as fallback")
	}
	if len(sessions.Sessions[0].AIRawResponseJSON) == 0 {
		t.Error("raw model response should be persisted")
	}
}

func TestIntakeFallsBackWhenModelFails(t *testing.T) {
	mock := &llm.MockLLMClient{Responses: []llm.MockResponse{
		{Err: errors.New("upstream unavailable")},
	}}
	svc, sessions := newIntakeService(t, mock)

	result, err := svc.Recommend(context.Background(), intakeAnswers(intake.TimeDeep), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.UsedFallback {
		t.Fatal("fallback flag must be set when the model path fails")
	}
	// One retry on transient failure, no model fallback for intake.
	if mock.Calls != 2 {
		t.Errorf("expected 2 attempts, got %d", mock.Calls)
	}

	ids := map[string]bool{}
	for _, rec := range result.Set.Recommended {
		ids[rec.ID] = true
	}
	for _, want := range []string{"section_1", "section_4", "section_10", "section_9", "section_18"} {
		if !ids[want] {
			t.Errorf("fallback set missing %s", want)
		}
	}

	if len(sessions.Sessions) != 1 || !sessions.Sessions[0].UsedFallback {
		t.Error("persisted session should be flagged as fallback")
	}
}

func TestIntakeQuickBudget(t *testing.T) {
	mock := &llm.MockLLMClient{Responses: []llm.MockResponse{
		{Err: errors.New("upstream unavailable")},
	}}
	svc, _ := newIntakeService(t, mock)

	result, err := svc.Recommend(context.Background(), intakeAnswers(intake.TimeQuick), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Set.Recommended) > 5 {
		t.Errorf("quick preference allows at most 5 sections, got %d", len(result.Set.Recommended))
	}
	for _, rec := range result.Set.Recommended {
		if rec.Priority == intake.PriorityOptional {
			t.Error("quick budget must not include optional sections")
		}
	}
}

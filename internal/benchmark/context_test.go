package benchmark

import (
	"strings"
	"testing"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService()
	if err != nil {
		t.Fatalf("failed to load benchmark library: %v", err)
	}
	return svc
}

func TestRelevantControlsKeywordMatch(t *testing.T) {
	svc := newTestService(t)

	controls := svc.RelevantControls(
		"Identity & Access Management",
		"Authentication, authorization and privileged access controls",
		10,
	)
	if len(controls) == 0 {
		t.Fatal("IAM section matched no controls")
	}
	for _, c := range controls {
		if c.Framework == "" || c.ID == "" || c.Control == "" {
			t.Errorf("incomplete control: %+v", c)
		}
	}
}

func TestRelevantControlsCap(t *testing.T) {
	svc := newTestService(t)

	controls := svc.RelevantControls(
		"Identity access data encryption incident monitoring",
		"access authentication authorization logging detection response cloud application",
		3,
	)
	if len(controls) > 3 {
		t.Errorf("max_controls not honored: got %d", len(controls))
	}
}

func TestRelevantControlsShortWordsIgnored(t *testing.T) {
	svc := newTestService(t)

	// All words are length <= 3 so nothing should match
	controls := svc.RelevantControls("a b cd", "ef g hi", 10)
	if len(controls) != 0 {
		t.Errorf("short words matched %d controls", len(controls))
	}
}

func TestContextBlockFormat(t *testing.T) {
	svc := newTestService(t)

	block := svc.ContextBlock("Incident Response", "Detection, response planning and playbooks", 5)
	if !strings.Contains(block, "RELEVANT INDUSTRY CONTROLS:") {
		t.Error("context block missing header")
	}
	if !strings.Contains(block, "Use these controls as benchmarks") {
		t.Error("context block missing trailer")
	}

	empty := svc.ContextBlock("zzzz", "qqqq", 5)
	if empty != "" {
		t.Errorf("no-match block should be empty, got %q", empty)
	}
}

func TestRelevantControlsDeterministic(t *testing.T) {
	svc := newTestService(t)

	first := svc.RelevantControls("Data Protection", "encryption and data storage", 10)
	for i := 0; i < 5; i++ {
		again := svc.RelevantControls("Data Protection", "encryption and data storage", 10)
		if len(again) != len(first) {
			t.Fatalf("run %d: %d controls, want %d", i, len(again), len(first))
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d: order differs at %d: %v vs %v", i, j, again[j], first[j])
			}
		}
	}
}

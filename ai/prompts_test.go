package ai

import (
	"strings"
	"testing"

	"postureai/domain/assess"
	"postureai/domain/intake"
)

func sampleItems() []assess.InputItem {
	return []assess.InputItem{
		{QuestionID: "q4_1", Answer: "quarterly", Weight: 3, Comment: "external auditor drives the cadence"},
		{QuestionID: "q4_2", Answer: "yes", Weight: 5, Context: "MFA rollout finished in Q2"},
		{QuestionID: "q4_3", Answer: "partially_implemented", Weight: 4},
	}
}

func TestSignalLinesNumbering(t *testing.T) {
	lines := SignalLines(sampleItems(), PromptOptions{})

	if !strings.Contains(lines, "Q1: quarterly (weight:3)") {
		t.Fatalf("missing Q1 line:\n%s", lines)
	}
	if !strings.Contains(lines, "Q3: partially_implemented (weight:4)") {
		t.Fatalf("missing Q3 line:\n%s", lines)
	}
	if strings.Contains(lines, "User comment") || strings.Contains(lines, "Context:") {
		t.Fatal("comments and context must be off by default")
	}
}

func TestSignalLinesEnrichmentAndTruncation(t *testing.T) {
	opts := PromptOptions{
		IncludeComments: true,
		IncludeContext:  true,
		CommentMaxChars: 10,
	}
	lines := SignalLines(sampleItems(), opts)

	if !strings.Contains(lines, "User comment: external a...") {
		t.Fatalf("comment not truncated to limit:\n%s", lines)
	}
	if !strings.Contains(lines, "Context: MFA rollout finished in Q2") {
		t.Fatalf("context missing or truncated without a limit:\n%s", lines)
	}
}

func TestSectionPromptReferencesSignalRange(t *testing.T) {
	section := assess.Section{ID: "section_4", Title: "Identity & Access Management", Description: "Access control posture."}
	prompt := SectionPrompt(section, sampleItems(), "", PromptOptions{})

	if !strings.Contains(prompt, "Section: Identity & Access Management") {
		t.Fatal("missing section title")
	}
	if !strings.Contains(prompt, "(Q1-Q3)") {
		t.Fatal("signal range must match the item count")
	}
	if !strings.Contains(prompt, `"risk_level"`) {
		t.Fatal("missing schema fragment")
	}
}

func TestSectionPromptIncludesCuratedContext(t *testing.T) {
	section := assess.Section{ID: "section_9", Title: "Cloud Security"}
	block := "Relevant Industry Benchmarks:\n- CIS 1.1: Maintain asset inventory\n"
	prompt := SectionPrompt(section, sampleItems(), block, PromptOptions{})

	if !strings.Contains(prompt, "CIS 1.1") {
		t.Fatal("curated context not embedded")
	}
}

func TestSynthesisPromptAnnotatesDegradedSections(t *testing.T) {
	summaries := []SectionSummary{
		{
			Title:              "Identity & Access Management",
			ScorePercent:       72.5,
			RiskLevel:          "Medium",
			TopGaps:            []string{"g1", "g2", "g3", "g4"},
			TopRecommendations: []string{"r1"},
		},
		{
			Title:        "Cloud Security",
			ScorePercent: 40,
			RiskLevel:    "Medium",
			Degraded:     true,
		},
	}

	prompt := SynthesisPrompt(summaries, 61.3, "")

	if !strings.Contains(prompt, "OVERALL SECURITY SCORE: 61.3%") {
		t.Fatal("missing overall score")
	}
	// Gap lists are capped at three entries
	if !strings.Contains(prompt, "Top Gaps: g1, g2, g3\n") || strings.Contains(prompt, "g4") {
		t.Fatalf("gap list not capped:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Automated analysis for this section was unavailable") {
		t.Fatal("degraded section not annotated")
	}
	if strings.Contains(prompt, "Top Gaps: \nTop Recommendations") {
		t.Fatal("degraded sections must not list gaps")
	}
}

func TestIntakeUserMessageEmbedsProfileAndCatalogue(t *testing.T) {
	profile := intake.NewProfile(intake.Answers{
		Role:           "ciso",
		Sector:         "manufacturing",
		Environment:    "hybrid",
		SystemTypes:    []string{"web_applications", "ot_ics"},
		CloudProviders: []string{"aws"},
		PrimaryGoal:    "understand overall security posture",
		TimePreference: intake.TimeModerate,
	})

	msg, err := IntakeUserMessage(profile, intake.DefaultCatalogue())
	if err != nil {
		t.Fatalf("IntakeUserMessage: %v", err)
	}

	if !strings.Contains(msg, `"has_ot_ics": true`) {
		t.Fatal("derived OT/ICS flag missing from profile JSON")
	}
	if !strings.Contains(msg, `"section_4"`) {
		t.Fatal("catalogue section ids missing")
	}
	if !strings.Contains(msg, "recommended_sections") {
		t.Fatal("response schema missing")
	}
}

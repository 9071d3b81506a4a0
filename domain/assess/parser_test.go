package assess

import (
	"testing"

	"postureai/domain/core"
)

const sampleLibrary = `# Question Library

## Section 4: Identity & Access Management

How the organization controls who can access what.

#### Question 4.1.1

**Question:** How often are access rights reviewed?
**Type:** multiple_choice
**Weight:** 3
**Scale:** frequency_review

**Option 1: Quarterly**
Reviews happen at least every quarter.
**Option 2: Annually**
**Option 3: No formal review**

#### Question 4.1.2

**Question:** Is multi-factor authentication enforced for all users?
**Type:** yes_no
**Weight:** 5

## Section 9: Cloud Security

Posture of cloud workloads and accounts.

#### Question 9.1.1

**Question:** What is your cloud configuration maturity?
**Type:** multiple_choice
**Weight:** 4
**Scale:** maturity

**Option 1: Optimized**
**Option 2: Ad Hoc**
`

func TestParseStructureSectionsAndQuestions(t *testing.T) {
	structure := ParseStructure(sampleLibrary)

	if len(structure.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(structure.Sections))
	}

	iam := structure.Sections[0]
	if iam.ID != "section_4" {
		t.Fatalf("section id = %s, want section_4", iam.ID)
	}
	if iam.Title != "Identity & Access Management" {
		t.Fatalf("unexpected title %q", iam.Title)
	}
	if iam.Description != "How the organization controls who can access what." {
		t.Fatalf("unexpected description %q", iam.Description)
	}
	if len(iam.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(iam.Questions))
	}

	q := iam.Questions[0]
	if q.ID != "4_1_1" {
		t.Fatalf("question id = %s, want 4_1_1", q.ID)
	}
	if q.SectionID != "section_4" {
		t.Fatalf("question section = %s, want section_4", q.SectionID)
	}
	if q.Type != QuestionMultipleChoice || q.Weight != 3 {
		t.Fatalf("type/weight = %s/%d, want multiple_choice/3", q.Type, q.Weight)
	}
	if q.ScaleType != ScaleFrequencyReview {
		t.Fatalf("scale = %s, want frequency_review", q.ScaleType)
	}
	if len(q.Options) != 3 {
		t.Fatalf("got %d options, want 3", len(q.Options))
	}
	if q.Options[0].Value != "quarterly" {
		t.Fatalf("option value = %q, want quarterly", q.Options[0].Value)
	}
	if q.Options[0].Description != "Reviews happen at least every quarter." {
		t.Fatalf("unexpected option description %q", q.Options[0].Description)
	}
	if q.Options[2].Value != "no_formal_review" {
		t.Fatalf("option value = %q, want no_formal_review", q.Options[2].Value)
	}

	yn := iam.Questions[1]
	if yn.Type != QuestionYesNo || yn.Weight != 5 {
		t.Fatalf("yes_no type/weight = %s/%d", yn.Type, yn.Weight)
	}
	if yn.ScaleType != "" {
		t.Fatalf("yes_no questions carry no scale, got %s", yn.ScaleType)
	}
}

func TestParseStructureNumericAnswersScoreThroughOptions(t *testing.T) {
	structure := ParseStructure(sampleLibrary)
	cloud := structure.Sections[1]
	q := cloud.Questions[0]

	// "1" maps to the first option slug, which the maturity scale scores at 1.0
	got := ScoreQuestion(q, Response{QuestionID: q.ID, Answer: []string{"1"}})
	if got.Score != 4 || got.MaxScore != 4 {
		t.Fatalf("got %d/%d, want 4/4", got.Score, got.MaxScore)
	}

	got = ScoreQuestion(q, Response{QuestionID: q.ID, Answer: []string{"2"}})
	if got.Score != 1 || got.MaxScore != 4 {
		t.Fatalf("got %d/%d, want 1/4 for ad_hoc", got.Score, got.MaxScore)
	}
}

func TestFilterBySections(t *testing.T) {
	structure := ParseStructure(sampleLibrary)

	filtered := structure.FilterBySections([]core.SectionID{"section_9", "section_999"})
	if len(filtered.Sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(filtered.Sections))
	}
	if filtered.Sections[0].ID != "section_9" {
		t.Fatalf("kept %s, want section_9", filtered.Sections[0].ID)
	}
}

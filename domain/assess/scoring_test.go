package assess

import (
	"testing"

	"postureai/domain/core"
)

func TestScoreQuestionYesNo(t *testing.T) {
	q := Question{ID: "q1", Type: QuestionYesNo, Weight: 5}

	got := ScoreQuestion(q, Response{QuestionID: "q1", Answer: []string{"yes"}})
	if got.Score != 5 || got.MaxScore != 5 {
		t.Fatalf("yes: got %d/%d, want 5/5", got.Score, got.MaxScore)
	}

	got = ScoreQuestion(q, Response{QuestionID: "q1", Answer: []string{"no"}})
	if got.Score != 0 || got.MaxScore != 5 {
		t.Fatalf("no: got %d/%d, want 0/5", got.Score, got.MaxScore)
	}
}

func TestScoreQuestionScaledChoice(t *testing.T) {
	q := Question{ID: "q2", Type: QuestionMultipleChoice, Weight: 4, ScaleType: ScaleImplementation}

	got := ScoreQuestion(q, Response{QuestionID: "q2", Answer: []string{"partially_implemented"}})
	if got.Score != 2 || got.MaxScore != 4 {
		t.Fatalf("got %d/%d, want 2/4", got.Score, got.MaxScore)
	}

	got = ScoreQuestion(q, Response{QuestionID: "q2", Answer: []string{"not_implemented"}})
	if got.Score != 0 || got.MaxScore != 4 {
		t.Fatalf("got %d/%d, want 0/4", got.Score, got.MaxScore)
	}
}

func TestScoreQuestionSentinels(t *testing.T) {
	q := Question{ID: "q3", Type: QuestionMultipleChoice, Weight: 6, ScaleType: ScaleMaturity}

	got := ScoreQuestion(q, Response{QuestionID: "q3", Answer: []string{"unknown"}})
	if got.Score != 0 || got.MaxScore != 6 {
		t.Fatalf("unknown: got %d/%d, want 0/6", got.Score, got.MaxScore)
	}
	if !hasFlag(got.Flags, FlagUnknown) {
		t.Fatal("unknown answer should carry the unknown flag")
	}

	got = ScoreQuestion(q, Response{QuestionID: "q3", Answer: []string{"N/A"}})
	if got.Score != 0 || got.MaxScore != 0 {
		t.Fatalf("not_applicable: got %d/%d, want 0/0", got.Score, got.MaxScore)
	}
	if !hasFlag(got.Flags, FlagNotApplicable) {
		t.Fatal("n/a answer should carry the not_applicable flag")
	}
}

func TestScoreQuestionMultiSelectBestWins(t *testing.T) {
	q := Question{ID: "q4", Type: QuestionMultipleSelect, Weight: 10, ScaleType: ScaleFrequencyMonitoring}

	got := ScoreQuestion(q, Response{QuestionID: "q4", Answer: []string{"monthly", "continuously", "weekly"}})
	if got.Score != 10 || got.MaxScore != 10 {
		t.Fatalf("got %d/%d, want 10/10", got.Score, got.MaxScore)
	}
}

func TestScoreQuestionNumericAnswerMapsToOption(t *testing.T) {
	q := Question{
		ID:        "q5",
		Type:      QuestionMultipleChoice,
		Weight:    8,
		ScaleType: ScaleMaturity,
		Options: []Option{
			{Value: "optimized", Label: "Optimized"},
			{Value: "managed", Label: "Managed"},
			{Value: "defined", Label: "Defined"},
			{Value: "ad_hoc", Label: "Ad Hoc"},
		},
	}

	got := ScoreQuestion(q, Response{QuestionID: "q5", Answer: []string{"2"}})
	if got.Score != 6 || got.MaxScore != 8 {
		t.Fatalf("got %d/%d, want 6/8 for managed", got.Score, got.MaxScore)
	}
}

func TestCalculateScoresSectionAggregation(t *testing.T) {
	structure := Structure{Sections: []Section{{
		ID:    "section_6",
		Title: "Data Protection",
		Questions: []Question{
			{ID: "q6_1", SectionID: "section_6", Type: QuestionMultipleChoice, Weight: 8, ScaleType: ScaleMaturity},
			{ID: "q6_2", SectionID: "section_6", Type: QuestionMultipleChoice, Weight: 4, ScaleType: ScaleImplementation},
			{ID: "q6_3", SectionID: "section_6", Type: QuestionYesNo, Weight: 8},
			{ID: "q6_4", SectionID: "section_6", Type: QuestionYesNo, Weight: 4},
		},
	}}}
	responses := map[core.QuestionID]Response{
		"q6_1": {QuestionID: "q6_1", Answer: []string{"managed"}},
		"q6_2": {QuestionID: "q6_2", Answer: []string{"not_applicable"}},
		"q6_3": {QuestionID: "q6_3", Answer: []string{"yes"}},
	}

	scores := CalculateScores(structure, responses)
	ss, ok := scores.Sections["section_6"]
	if !ok {
		t.Fatal("missing section_6 score")
	}

	// managed 6/8, n/a drops out, yes 8/8, unanswered keeps 4 in the denominator
	if ss.Score != 14 || ss.MaxScore != 20 {
		t.Fatalf("got %d/%d, want 14/20", ss.Score, ss.MaxScore)
	}
	if ss.Percentage != 70 {
		t.Fatalf("percentage = %.2f, want 70", ss.Percentage)
	}
	if ss.ResponsesCount != 3 || ss.TotalQuestions != 4 {
		t.Fatalf("responses %d/%d, want 3/4", ss.ResponsesCount, ss.TotalQuestions)
	}
	if ss.CompletionRate != 75 {
		t.Fatalf("completion rate = %.2f, want 75", ss.CompletionRate)
	}
	if ss.NotApplicableCount != 1 {
		t.Fatalf("not_applicable count = %d, want 1", ss.NotApplicableCount)
	}

	if scores.Overall.Score != 14 || scores.Overall.MaxScore != 20 {
		t.Fatalf("overall %d/%d, want 14/20", scores.Overall.Score, scores.Overall.MaxScore)
	}
}

func TestCalculateScoresUnknownCounted(t *testing.T) {
	structure := Structure{Sections: []Section{{
		ID: "section_1",
		Questions: []Question{
			{ID: "q1_1", SectionID: "section_1", Type: QuestionMultipleChoice, Weight: 5, ScaleType: ScaleGovernance},
		},
	}}}
	responses := map[core.QuestionID]Response{
		"q1_1": {QuestionID: "q1_1", Answer: []string{"not_sure"}},
	}

	scores := CalculateScores(structure, responses)
	ss := scores.Sections["section_1"]
	if ss.Score != 0 || ss.MaxScore != 5 {
		t.Fatalf("got %d/%d, want 0/5", ss.Score, ss.MaxScore)
	}
	if ss.UnknownCount != 1 {
		t.Fatalf("unknown count = %d, want 1", ss.UnknownCount)
	}
}
